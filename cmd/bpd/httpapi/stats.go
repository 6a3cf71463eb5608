package httpapi

import (
	"net/http"

	"github.com/dtn-stack/bplib/pkg/channel"
)

// ChannelStats is one channel's snapshot in the /stats response.
type ChannelStats struct {
	Name                string `json:"name"`
	Lost                uint64 `json:"lost"`
	Expired             uint64 `json:"expired"`
	Retransmitted       uint64 `json:"retransmitted"`
	Acknowledged        uint64 `json:"acknowledged"`
	Delivered           uint64 `json:"delivered"`
	Generated           uint64 `json:"generated"`
	Transmitted         uint64 `json:"transmitted"`
	Received            uint64 `json:"received"`
	ActiveTableOccupied int    `json:"active_table_occupied"`
}

// StatsHandler serves GET /stats: a LatchStats snapshot of every open
// channel.
type StatsHandler struct {
	channels map[string]*channel.Channel
}

// NewStatsHandler creates a stats handler over the daemon's open channels.
func NewStatsHandler(channels map[string]*channel.Channel) *StatsHandler {
	return &StatsHandler{channels: channels}
}

func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	out := make([]ChannelStats, 0, len(h.channels))
	for name, ch := range h.channels {
		stats, occ := ch.LatchStats()
		out = append(out, ChannelStats{
			Name:                name,
			Lost:                stats.Lost,
			Expired:             stats.Expired,
			Retransmitted:       stats.Retransmitted,
			Acknowledged:        stats.Acknowledged,
			Delivered:           stats.Delivered,
			Generated:           stats.Generated,
			Transmitted:         stats.Transmitted,
			Received:            stats.Received,
			ActiveTableOccupied: occ,
		})
	}
	writeJSON(w, http.StatusOK, healthyResponse(out))
}
