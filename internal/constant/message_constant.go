package constant

// User-facing replies of the job application workflow.
const (
	MsgApplicationStarted    = "Let's start your job application! Please provide your name:"
	MsgApplicationInProgress = "You already have an application in progress."
	MsgProvideField          = "Please provide your %s:"
	MsgClarifyField          = "I'm collecting your job application right now. Please provide your %s, or type 'cancel' to stop."
	MsgReviewApplication     = "Please review your application:\n\n%s\n\nType 'confirm' to submit or 'cancel' to discard it."
	MsgApplicationConfirmed  = "✅ Application confirmed and submitted successfully!\n\n%s"
	MsgConfirmFailed         = "❌ Failed to confirm application: %s"
	MsgApplicationCancelled  = "Application canceled."
	MsgApplicationDetails    = "📄 Here are your application details:\n\n%s"
	MsgApplicationNotFound   = "❌ No application found for your session."
	MsgFieldUpdated          = "✅ Your %s has been updated to '%s'."
	MsgNothingToUpdate       = "❌ No existing application found to update."
	MsgInvalidField          = "⚠️ '%s' is not a valid field. Valid fields are: %s"
	MsgMalformedClause       = "⚠️ Could not understand '%s'. Use: update <field> to <value>."
	MsgNoUpdateClauses       = "⚠️ Tell me what to change, for example: update my email to jane@example.com"
	MsgApplicationDeleted    = "🗑️ Your job application has been permanently deleted."
	MsgNothingToDelete       = "❌ No application found to delete."
	MsgSomethingWentWrong    = "❌ Something went wrong: %s"
	MsgAnswerUnavailable     = "Sorry, I couldn't reach the answering service right now. Please try again in a moment."
	MsgNotAvailable          = "N/A"
)
