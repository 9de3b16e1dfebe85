package handler

import (
	"caregate/internal/lifecycle/models"
	id "caregate/pkg/domain"
)

// BlacklistCheckResponse is the response of POST /admin/blacklist/check.
type BlacklistCheckResponse struct {
	Blacklisted bool                   `json:"blacklisted"`
	Entry       *models.BlacklistEntry `json:"entry,omitempty"`
}

// BlacklistListResponse is the response of GET /admin/blacklist.
type BlacklistListResponse struct {
	Entries []*models.BlacklistEntry `json:"entries"`
	Count   int                      `json:"count"`
}

// RejectionCountResponse is the response of GET /admin/rejections.
type RejectionCountResponse struct {
	Email string `json:"email"`
	Count int    `json:"count"`
}

// SuspensionListResponse is the response of GET /admin/providers/{id}/suspensions.
type SuspensionListResponse struct {
	ProviderID  id.ProviderID              `json:"provider_id"`
	Suspensions []*models.SuspensionRecord `json:"suspensions"`
	Count       int                        `json:"count"`
	Active      int                        `json:"active"`
}

func newSuspensionList(providerID id.ProviderID, records []*models.SuspensionRecord) *SuspensionListResponse {
	if records == nil {
		records = []*models.SuspensionRecord{}
	}
	active := 0
	for _, r := range records {
		if r.IsActive() {
			active++
		}
	}
	return &SuspensionListResponse{
		ProviderID:  providerID,
		Suspensions: records,
		Count:       len(records),
		Active:      active,
	}
}

func newBlacklistList(entries []*models.BlacklistEntry) *BlacklistListResponse {
	if entries == nil {
		entries = []*models.BlacklistEntry{}
	}
	return &BlacklistListResponse{Entries: entries, Count: len(entries)}
}
