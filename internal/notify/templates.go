package notify

import (
	"fmt"
	"time"
)

// ReminderMessage builds the reminder for a given zero-based ordinal.
// The first three reminders escalate; anything beyond gets the generic
// variant.
func ReminderMessage(ordinal int, now time.Time) Message {
	var text string
	switch ordinal {
	case 0:
		text = firstReminder(now)
	case 1:
		text = secondReminder(now)
	case 2:
		text = finalReminder(now)
	default:
		text = genericReminder(now)
	}
	return Message{Kind: KindReminder, Text: text}
}

// SuccessMessage builds the completion notification embedding a report summary.
func SuccessMessage(summary string, now time.Time) Message {
	text := fmt.Sprintf(`*Daily Report Completed*

Your daily report was generated and processed at %s.

*Report Summary:*
%s

Data was extracted from the sheet, the report was generated, archived, and this notification sent.

_Automated by reportbot_`, now.Format("15:04"), summary)
	return Message{Kind: KindSuccess, Text: text}
}

// ErrorMessage builds the failure notification embedding an error string.
func ErrorMessage(errText string, now time.Time) Message {
	text := fmt.Sprintf(`*Report Generation Error*

There was an issue generating the daily report at %s.

*Error details:*
%s

Check the sheet for today's data and verify it is accessible. A manual check can be triggered via POST /api/trigger. Checking resumes at the next scheduled time.

_Automated by reportbot_`, now.Format("15:04"), errText)
	return Message{Kind: KindError, Text: text}
}

func firstReminder(now time.Time) string {
	return fmt.Sprintf(`*Daily Report Reminder #1*

Time: %s

It's time for the daily report. The sheet has no entry for today yet.

Please add a row with:
- Today's date: %s
- Completed tasks
- In-progress tasks
- Blockers, if any

The next check runs at the next scheduled time.

_Automated by reportbot_`, now.Format("15:04"), now.Format("02/01/2006"))
}

func secondReminder(now time.Time) string {
	return fmt.Sprintf(`*Daily Report Reminder #2*

Time: %s

Second reminder for today's daily report. Still no entry in the sheet.

Don't forget to add:
- Today's date: %s
- Your progress updates
- Any blockers you're facing

One more check is scheduled today.

_Automated by reportbot_`, now.Format("15:04"), now.Format("02/01/2006"))
}

func finalReminder(now time.Time) string {
	return fmt.Sprintf(`*Final Daily Report Reminder #3*

Time: %s

This is the final reminder for today's daily report. After this, automated checks stop for the day.

Last chance to add:
- Date: %s
- Your daily progress
- Any updates or blockers

If you add the report later, trigger a manual check via POST /api/trigger.

_Automated by reportbot_`, now.Format("15:04"), now.Format("02/01/2006"))
}

func genericReminder(now time.Time) string {
	return fmt.Sprintf(`*Daily Report Reminder*

Time: %s

Please don't forget to add your daily report to the sheet: today's date (%s) and your progress updates.

_Automated by reportbot_`, now.Format("15:04"), now.Format("02/01/2006"))
}
