package models

// AiringStatus represents the airing state of an anime
type AiringStatus string

const (
	AiringStatusReleasing      AiringStatus = "RELEASING"
	AiringStatusFinished       AiringStatus = "FINISHED"
	AiringStatusNotYetReleased AiringStatus = "NOT_YET_RELEASED"
	AiringStatusCancelled      AiringStatus = "CANCELLED"
)

// CharacterRole represents the narrative role of a character
type CharacterRole string

const (
	RoleMain       CharacterRole = "MAIN"
	RoleSupporting CharacterRole = "SUPPORTING"
	RoleBackground CharacterRole = "BACKGROUND"
)

// EnrichmentStatus represents the AI enrichment state of a character
type EnrichmentStatus string

const (
	EnrichmentPending EnrichmentStatus = "pending"
	EnrichmentSuccess EnrichmentStatus = "success"
	EnrichmentFailed  EnrichmentStatus = "failed"
	EnrichmentSkipped EnrichmentStatus = "skipped"
)

// WatchStatus represents a user's tracking state for an anime
type WatchStatus string

const (
	WatchStatusPlanToWatch WatchStatus = "plan_to_watch"
	WatchStatusWatching    WatchStatus = "watching"
	WatchStatusCompleted   WatchStatus = "completed"
	WatchStatusDropped     WatchStatus = "dropped"
)

// ValidWatchStatus reports whether s is one of the known watch statuses
func ValidWatchStatus(s WatchStatus) bool {
	switch s {
	case WatchStatusPlanToWatch, WatchStatusWatching, WatchStatusCompleted, WatchStatusDropped:
		return true
	}
	return false
}

// RefreshPriority represents how urgently an anime record needs a metadata refresh
type RefreshPriority string

const (
	PriorityCritical RefreshPriority = "critical"
	PriorityHigh     RefreshPriority = "high"
	PriorityMedium   RefreshPriority = "medium"
	PriorityLow      RefreshPriority = "low"
	PriorityNone     RefreshPriority = "none"
)

// RefreshTrigger represents what initiated a metadata refresh
type RefreshTrigger string

const (
	TriggerUserVisit  RefreshTrigger = "user_visit"
	TriggerManual     RefreshTrigger = "manual"
	TriggerBackground RefreshTrigger = "background"
)

// AnimeSchemaVersion is the current anime document schema version.
// Version 1 documents carry the legacy per-character IsAIEnriched boolean,
// version 2 documents use EnrichmentStatus.
const AnimeSchemaVersion = 2
