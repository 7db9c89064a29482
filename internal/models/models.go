package models

import "time"

type Role string

const (
	RoleStudent        Role = "student"
	RoleTeacher        Role = "teacher"
	RoleAdmin          Role = "admin"
	RoleSecondaryAdmin Role = "secondary_admin"
)

// IsAdmin reports whether the role may use the admin console.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSecondaryAdmin
}

type TaskCategory string

const (
	CategoryTest         TaskCategory = "Test"
	CategoryQuiz         TaskCategory = "Quiz"
	CategoryProject      TaskCategory = "Project"
	CategoryHomework     TaskCategory = "Homework"
	CategoryPresentation TaskCategory = "Presentation"
	CategoryPersonal     TaskCategory = "Personal"
	CategoryOthers       TaskCategory = "Others"
)

type Level string

const (
	LevelHigh   Level = "High"
	LevelMedium Level = "Medium"
	LevelLow    Level = "Low"
)

type TaskSource string

const (
	SourceStudent TaskSource = "student"
	SourceTeacher TaskSource = "teacher"
)

type Task struct {
	ID          string       `json:"id"`
	Title       string       `json:"title" validate:"required"`
	Description string       `json:"description,omitempty"`
	Category    TaskCategory `json:"category" validate:"omitempty,oneof=Test Quiz Project Homework Presentation Personal Others"`
	Importance  Level        `json:"importance,omitempty" validate:"omitempty,oneof=High Medium Low"`
	Urgency     Level        `json:"urgency,omitempty" validate:"omitempty,oneof=High Medium Low"`
	DueDate     string       `json:"dueDate,omitempty"`
	Completed   bool         `json:"completed"`
	Source      TaskSource   `json:"source,omitempty" validate:"omitempty,oneof=student teacher"`
	Subject     string       `json:"subject,omitempty"`
}

// ClassPeriod is one weekly timetable slot. An empty Subject is a free period.
type ClassPeriod struct {
	Subject     string `json:"subject"`
	TeacherID   string `json:"teacherId,omitempty"`
	TeacherName string `json:"teacherName,omitempty"`
	Room        string `json:"room,omitempty"`
	Tasks       []Task `json:"tasks"`
}

// ScheduleMap is keyed by "{day}-{slotIndex}", e.g. "Mon-0".
type ScheduleMap map[string]ClassPeriod

type Warning struct {
	ID             string     `json:"id"`
	Message        string     `json:"message"`
	IssuedBy       string     `json:"issuedBy"`
	CreatedAt      time.Time  `json:"createdAt"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
}

type Broadcast struct {
	ID             string     `json:"id"`
	Message        string     `json:"message"`
	From           string     `json:"from"`
	FromName       string     `json:"fromName,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	Acknowledged   bool       `json:"acknowledged"`
	AcknowledgedAt *time.Time `json:"acknowledgedAt,omitempty"`
}

type User struct {
	ID           string      `json:"id"`
	Username     string      `json:"username"`
	FullName     string      `json:"fullName"`
	PasswordHash string      `json:"passwordHash,omitempty"`
	Role         Role        `json:"role"`
	Banned       bool        `json:"banned"`
	Approved     bool        `json:"approved"`
	Warnings     []Warning   `json:"warnings"`
	Broadcasts   []Broadcast `json:"broadcasts"`
	CreatedAt    time.Time   `json:"createdAt"`
}

type Teacher struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Room     string   `json:"room,omitempty"`
	Subjects []string `json:"subjects,omitempty"`
}

type Action string

const (
	ActionLogin          Action = "login"
	ActionLogout         Action = "logout"
	ActionScheduleUpdate Action = "schedule_update"
	ActionUserBan        Action = "user_ban"
	ActionUserUnban      Action = "user_unban"
	ActionRoleChange     Action = "role_change"
	ActionWarningIssued  Action = "warning_issued"
	ActionBroadcastSent  Action = "broadcast_sent"
	ActionFlagsUpdate    Action = "flags_update"
	ActionDataExport     Action = "data_export"
	ActionDataImport     Action = "data_import"
	ActionUserDelete     Action = "user_delete"
	ActionPasswordReset  Action = "password_reset"
	ActionPostModerated  Action = "post_moderated"
	ActionEventModerated Action = "event_moderated"
	ActionTeacherApprove Action = "teacher_approved"
)

// SystemRecord is an audit log entry. Entries are never edited after append.
type SystemRecord struct {
	ID        string    `json:"id"`
	Actor     string    `json:"actor"`
	Action    Action    `json:"action"`
	Target    string    `json:"target,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Details   string    `json:"details,omitempty"`
}

type FeatureFlags struct {
	Community         bool `json:"community"`
	GPA               bool `json:"gpa"`
	Calendar          bool `json:"calendar"`
	AIFeatures        bool `json:"aiFeatures"`
	AutoApprovePosts  bool `json:"autoApprovePosts"`
	AutoApproveEvents bool `json:"autoApproveEvents"`
}

// DefaultFeatureFlags is used when no flags record has been written yet.
func DefaultFeatureFlags() FeatureFlags {
	return FeatureFlags{
		Community:  true,
		GPA:        true,
		Calendar:   true,
		AIFeatures: true,
	}
}

type ModerationStatus string

const (
	StatusPending  ModerationStatus = "pending"
	StatusApproved ModerationStatus = "approved"
	StatusRejected ModerationStatus = "rejected"
)

type CommunityPost struct {
	ID         string           `json:"id"`
	AuthorID   string           `json:"authorId"`
	AuthorName string           `json:"authorName"`
	Title      string           `json:"title"`
	Body       string           `json:"body"`
	Status     ModerationStatus `json:"status"`
	CreatedAt  time.Time        `json:"createdAt"`
}

type AssessmentEvent struct {
	ID        string           `json:"id"`
	Title     string           `json:"title"`
	Subject   string           `json:"subject"`
	Date      string           `json:"date"`
	Category  TaskCategory     `json:"category"`
	EventType string           `json:"eventType"`
	Status    ModerationStatus `json:"status"`
	CreatedBy string           `json:"createdBy"`
	CreatedAt time.Time        `json:"createdAt"`
}

type BroadcastRecord struct {
	ID         string    `json:"id"`
	TeacherID  string    `json:"teacherId"`
	Message    string    `json:"message"`
	Recipients []string  `json:"recipients"`
	SentAt     time.Time `json:"sentAt"`
}

type DeviceToken struct {
	Token    string `json:"token"`
	Platform string `json:"platform"`
}
