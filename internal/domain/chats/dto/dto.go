package dto

import (
	"github.com/Conte777/operator-service/internal/domain/chats/entities"
)

// ConversationsResponse is the body of GET .../chats. Stats is empty and
// StatsPending set when the stats were still computing; GET .../stats
// returns them once done.
type ConversationsResponse struct {
	Conversations []entities.Conversation   `json:"conversations"`
	PartialErrors []entities.AccountFailure `json:"partialErrors"`
	Stats         []entities.DailyStat      `json:"stats"`
	StatsPending  bool                      `json:"statsPending"`
}

// NewConversationsResponse builds the response for an aggregation
func NewConversationsResponse(agg *entities.Aggregation, stats []entities.DailyStat, pending bool) ConversationsResponse {
	resp := ConversationsResponse{
		Conversations: agg.Conversations,
		PartialErrors: agg.PartialErrors,
		Stats:         stats,
		StatsPending:  pending,
	}
	if resp.PartialErrors == nil {
		resp.PartialErrors = []entities.AccountFailure{}
	}
	if resp.Stats == nil {
		resp.Stats = []entities.DailyStat{}
	}
	return resp
}

// StatsResponse is the body of GET .../stats
type StatsResponse struct {
	Stats []entities.DailyStat `json:"stats"`
}

// NewStatsResponse builds the stats response
func NewStatsResponse(stats []entities.DailyStat) StatsResponse {
	if stats == nil {
		stats = []entities.DailyStat{}
	}
	return StatsResponse{Stats: stats}
}
