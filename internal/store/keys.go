package store

const (
	KeyTeachers         = "teachers"
	KeySubjects         = "subjects"
	KeyFeatureFlags     = "feature_flags"
	KeyCommunityPosts   = "community_posts"
	KeyAssessmentEvents = "assessment_events"
	KeySystemRecords    = "system_records"

	PrefixUser             = "user_"
	PrefixSchedule         = "schedule_"
	PrefixBroadcastHistory = "broadcast_history_"
	PrefixDeviceTokens     = "device_tokens_"
)

var fixedKeys = []string{
	KeyTeachers,
	KeySubjects,
	KeyFeatureFlags,
	KeyCommunityPosts,
	KeyAssessmentEvents,
	KeySystemRecords,
}

var keyPrefixes = []string{
	PrefixUser,
	PrefixSchedule,
	PrefixBroadcastHistory,
	PrefixDeviceTokens,
}

func UserKey(userID string) string { return PrefixUser + userID }

func ScheduleKey(userID string) string { return PrefixSchedule + userID }

func BroadcastHistoryKey(teacherID string) string { return PrefixBroadcastHistory + teacherID }

func DeviceTokensKey(userID string) string { return PrefixDeviceTokens + userID }

// IsPersistedKey reports whether key belongs to the exported key space.
func IsPersistedKey(key string) bool {
	for _, k := range fixedKeys {
		if key == k {
			return true
		}
	}
	for _, p := range keyPrefixes {
		if len(key) > len(p) && key[:len(p)] == p {
			return true
		}
	}
	return false
}
