package constant

type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusFailed     JobStatus = "FAILED"
	JobStatusCompleted  JobStatus = "COMPLETED"
)

type JobType string

const (
	JobTypeTranscoder JobType = "transcoder"
)

const EntityTypeVideo = "video"

type Environment string

const (
	EnvironmentProduction Environment = "production"
	EnvironmentStaging    Environment = "staging"
	EnvironmentDevelop    Environment = "develop"
)

func (e Environment) String() string {
	return string(e)
}

// GateState is the playability of one playlist video for one user.
type GateState string

const (
	GateStateLocked    GateState = "locked"
	GateStateUnlocked  GateState = "unlocked"
	GateStateCompleted GateState = "completed"
)

// Milestones are the progress percentages recorded once each per watch event.
var Milestones = []int{25, 50, 75, 100}

const MilestoneComplete = 100

type WatchEventType string

const (
	WatchEventPlay     WatchEventType = "play"
	WatchEventProgress WatchEventType = "progress"
	WatchEventComplete WatchEventType = "complete"
)

type FeedbackType string

const (
	FeedbackTypeGeneral FeedbackType = "general"
	FeedbackTypeBug     FeedbackType = "bug"
	FeedbackTypeFeature FeedbackType = "feature"
	FeedbackTypeContent FeedbackType = "content"
)

func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackTypeGeneral, FeedbackTypeBug, FeedbackTypeFeature, FeedbackTypeContent:
		return true
	}
	return false
}

const Unknown = "Unknown"
