package apperr

// GenericMessage is shown when an action has no registered message.
const GenericMessage = "Something unexpected happened. Please try again."

// Named actions used as keys for friendly messages and the error log.
const (
	ActionUploadVideo     = "upload_video"
	ActionFetchProfile    = "fetch_profile"
	ActionCheckUsername   = "check_username"
	ActionUpdateUsername  = "update_username"
	ActionSaveDraft       = "save_draft"
	ActionPublishVideo    = "publish_video"
	ActionFetchVideos     = "fetch_videos"
	ActionDeleteVideo     = "delete_video"
	ActionReportWatchTime = "report_watch_time"
	ActionSignIn          = "sign_in"
	ActionFetchDashboard  = "fetch_dashboard"
)

var friendlyMessages = map[string]string{
	ActionUploadVideo:     "We couldn't upload your video. Please try again.",
	ActionFetchProfile:    "We couldn't load your profile right now.",
	ActionCheckUsername:   "We couldn't verify your username. Please try again.",
	ActionUpdateUsername:  "We couldn't update your username. Please try again.",
	ActionSaveDraft:       "We couldn't save your progress. Please try again.",
	ActionPublishVideo:    "We couldn't publish your video. Please try again.",
	ActionFetchVideos:     "We couldn't load videos right now.",
	ActionDeleteVideo:     "We couldn't delete this video. Please try again.",
	ActionReportWatchTime: "We couldn't record watch time.",
	ActionSignIn:          "Sign in failed. Please try again.",
	ActionFetchDashboard:  "We couldn't load your dashboard right now.",
}

// FriendlyMessage looks up the message for action, falling back to GenericMessage.
func FriendlyMessage(action string) string {
	if msg, ok := friendlyMessages[action]; ok {
		return msg
	}
	return GenericMessage
}
