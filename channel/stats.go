package channel

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
)

// Stats is a snapshot of the channel counters.
type Stats struct {
	SentMessages     uint64 `json:"sent_messages"`
	SentBytes        uint64 `json:"sent_bytes"`
	ReceivedMessages uint64 `json:"received_messages"`
	ReceivedBytes    uint64 `json:"received_bytes"`
}

type counters struct {
	sentMsgs  atomic.Uint64
	sentBytes atomic.Uint64
	recvMsgs  atomic.Uint64
	recvBytes atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		SentMessages:     c.sentMsgs.Load(),
		SentBytes:        c.sentBytes.Load(),
		ReceivedMessages: c.recvMsgs.Load(),
		ReceivedBytes:    c.recvBytes.Load(),
	}
}

func (c *counters) reset() {
	c.sentMsgs.Store(0)
	c.sentBytes.Store(0)
	c.recvMsgs.Store(0)
	c.recvBytes.Store(0)
}

var (
	sentMsgsDesc = prometheus.NewDesc(
		"groupcast_channel_sent_messages_total",
		"Number of messages sent by the channel.",
		[]string{"cluster"}, nil,
	)
	sentBytesDesc = prometheus.NewDesc(
		"groupcast_channel_sent_bytes_total",
		"Number of payload bytes sent by the channel.",
		[]string{"cluster"}, nil,
	)
	recvMsgsDesc = prometheus.NewDesc(
		"groupcast_channel_received_messages_total",
		"Number of messages delivered to the application.",
		[]string{"cluster"}, nil,
	)
	recvBytesDesc = prometheus.NewDesc(
		"groupcast_channel_received_bytes_total",
		"Number of payload bytes delivered to the application.",
		[]string{"cluster"}, nil,
	)
	viewSizeDesc = prometheus.NewDesc(
		"groupcast_channel_view_members",
		"Number of members in the current view.",
		[]string{"cluster"}, nil,
	)
)

type collector struct {
	ch *Channel
}

func (c collector) Describe(descs chan<- *prometheus.Desc) {
	descs <- sentMsgsDesc
	descs <- sentBytesDesc
	descs <- recvMsgsDesc
	descs <- recvBytesDesc
	descs <- viewSizeDesc
}

func (c collector) Collect(metrics chan<- prometheus.Metric) {
	stats := c.ch.Stats()
	cluster := c.ch.ClusterName()

	metrics <- prometheus.MustNewConstMetric(sentMsgsDesc, prometheus.CounterValue, float64(stats.SentMessages), cluster)
	metrics <- prometheus.MustNewConstMetric(sentBytesDesc, prometheus.CounterValue, float64(stats.SentBytes), cluster)
	metrics <- prometheus.MustNewConstMetric(recvMsgsDesc, prometheus.CounterValue, float64(stats.ReceivedMessages), cluster)
	metrics <- prometheus.MustNewConstMetric(recvBytesDesc, prometheus.CounterValue, float64(stats.ReceivedBytes), cluster)

	members := 0
	if v := c.ch.View(); v != nil {
		members = v.Size()
	}

	metrics <- prometheus.MustNewConstMetric(viewSizeDesc, prometheus.GaugeValue, float64(members), cluster)
}
