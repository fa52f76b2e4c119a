package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/channel"
	"github.com/maxpoletaev/groupcast/view"
)

func TestChannelAPI_handleGet(t *testing.T) {
	ctrl := gomock.NewController(t)

	addr := address.NewUUID()
	v := view.Create(addr, 1, addr)

	ch := NewMockChannel(ctrl)
	ch.EXPECT().Address().Return(addr)
	ch.EXPECT().Name().Return("node-1")
	ch.EXPECT().ClusterName().Return("chat")
	ch.EXPECT().State().Return(channel.StateConnected)
	ch.EXPECT().View().Return(v)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/channel", nil)

	CreateRouter(ch, nil).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp channelInfo
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))

	require.Equal(t, channelInfo{
		Address: addr.String(),
		Name:    "node-1",
		Cluster: "chat",
		State:   "CONNECTED",
		View:    v.String(),
	}, resp)
}

func TestChannelAPI_handleGetView(t *testing.T) {
	a, b := address.NewUUID(), address.NewUUID()

	names := address.NewNameCache()
	names.Add(a, "alice")

	tests := map[string]struct {
		view     *view.View
		wantCode int
		wantBody viewInfo
	}{
		"NoView": {
			wantCode: http.StatusNotFound,
		},
		"Regular": {
			view:     view.Create(a, 7, a, b),
			wantCode: http.StatusOK,
			wantBody: viewInfo{
				ID:          7,
				Creator:     a.String(),
				Coordinator: a.String(),
				Members: []memberInfo{
					{Address: a.String(), Name: "alice"},
					{Address: b.String(), Name: b.String()},
				},
			},
		},
		"MergeView": {
			view: view.NewMergeView(
				view.ViewID{Creator: b, ID: 9},
				[]address.Address{b, a},
				[]*view.View{view.Create(a, 3, a), view.Create(b, 4, b)},
			),
			wantCode: http.StatusOK,
			wantBody: viewInfo{
				ID:          9,
				Creator:     b.String(),
				Coordinator: b.String(),
				Members: []memberInfo{
					{Address: b.String(), Name: b.String()},
					{Address: a.String(), Name: "alice"},
				},
				MergeView: true,
				Subgroups: []string{
					view.Create(a, 3, a).String(),
					view.Create(b, 4, b).String(),
				},
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			ch := NewMockChannel(ctrl)
			ch.EXPECT().View().Return(tt.view)
			ch.EXPECT().NameCache().Return(names).AnyTimes()

			rr := httptest.NewRecorder()
			req := httptest.NewRequest("GET", "/channel/view", nil)

			CreateRouter(ch, nil).ServeHTTP(rr, req)

			require.Equal(t, tt.wantCode, rr.Code)

			if tt.wantCode != http.StatusOK {
				return
			}

			var resp viewInfo
			require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
			require.Equal(t, tt.wantBody, resp)
		})
	}
}

func TestChannelAPI_handleGetStats(t *testing.T) {
	ctrl := gomock.NewController(t)

	stats := channel.Stats{
		SentMessages:     3,
		SentBytes:        120,
		ReceivedMessages: 5,
		ReceivedBytes:    200,
	}

	ch := NewMockChannel(ctrl)
	ch.EXPECT().Stats().Return(stats)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/channel/stats", nil)

	CreateRouter(ch, nil).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp channel.Stats
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.Equal(t, stats, resp)
}

func TestMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)

	reg := prometheus.NewRegistry()
	counter := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "test_events_total",
		Help: "Test counter.",
	})

	reg.MustRegister(counter)
	counter.Add(2)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)

	CreateRouter(NewMockChannel(ctrl), reg).ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "test_events_total 2"))
}

func TestMetrics_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)

	CreateRouter(NewMockChannel(ctrl), nil).ServeHTTP(rr, req)

	require.Equal(t, http.StatusNotFound, rr.Code)
}
