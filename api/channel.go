package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/maxpoletaev/groupcast/address"
	"github.com/maxpoletaev/groupcast/view"
)

type channelInfo struct {
	Address string
	Name    string
	Cluster string
	State   string
	View    string `json:",omitempty"`
}

type memberInfo struct {
	Address string
	Name    string
}

type viewInfo struct {
	ID          int64
	Creator     string
	Coordinator string
	Members     []memberInfo
	MergeView   bool
	Subgroups   []string `json:",omitempty"`
}

type errorResponse struct {
	Error string
}

type channelAPI struct {
	ch Channel
}

func newChannelAPI(ch Channel) *channelAPI {
	return &channelAPI{ch: ch}
}

func (api *channelAPI) Bind(r chi.Router) {
	r.Get("/channel", api.handleGet)
	r.Get("/channel/view", api.handleGetView)
	r.Get("/channel/stats", api.handleGetStats)
}

func addrString(addr address.Address) string {
	if addr == nil {
		return ""
	}

	return addr.String()
}

func (api *channelAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	resp := channelInfo{
		Address: addrString(api.ch.Address()),
		Name:    api.ch.Name(),
		Cluster: api.ch.ClusterName(),
		State:   api.ch.State().String(),
	}

	if v := api.ch.View(); v != nil {
		resp.View = v.String()
	}

	render.JSON(w, r, resp)
}

func (api *channelAPI) handleGetView(w http.ResponseWriter, r *http.Request) {
	v := api.ch.View()
	if v == nil {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, errorResponse{Error: "no view installed"})

		return
	}

	render.JSON(w, r, api.toViewInfo(v))
}

func (api *channelAPI) toViewInfo(v *view.View) viewInfo {
	names := api.ch.NameCache()
	members := v.Members()

	info := viewInfo{
		ID:          v.ID().ID,
		Creator:     addrString(v.Creator()),
		Coordinator: addrString(v.Coordinator()),
		Members:     make([]memberInfo, len(members)),
		MergeView:   v.IsMergeView(),
	}

	for i, m := range members {
		info.Members[i] = memberInfo{
			Address: m.String(),
			Name:    names.Name(m),
		}
	}

	for _, sub := range v.Subgroups() {
		info.Subgroups = append(info.Subgroups, sub.String())
	}

	return info
}

func (api *channelAPI) handleGetStats(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, api.ch.Stats())
}
