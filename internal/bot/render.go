package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/dispatch"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/internal/report"
	"github.com/batangdelosreyes03-bit/sidehustle-telegram-bot/pkg/models"
)

// Outgoing message assembly. Everything user-visible lives here so handler
// logic stays free of formatting.

const (
	ButtonFreelancer = "👤 I'm a Freelancer"
	ButtonClient     = "🧑‍💼 I'm a Client"
)

const welcomeText = `👋 *Welcome to SideHustle Bot!*

Choose your role:
• 👤 *Freelancer* - Find work opportunities
• 🧑‍💼 *Client* - Post jobs and hire talent

⚠️ *Important:*
- All payments are direct
- Verify before transacting
- This platform is free`

const adminGreetingText = `👑 *ADMIN MODE ACTIVATED*

You have access to admin commands:
/dashboard - View real-time stats
/users - View all users
/alljobs - View all jobs
/dailyreport - Daily report
/analytics - Detailed analytics
/viewuser - View user details
/broadcast - Send message to all
/getid - Get your Telegram ID

To use as normal user, continue below.`

const skillsPrompt = "🛠️ *What are your skills?*\nExample: Web Design, Writing, Programming"

const locationPrompt = "📍 *Where are you located?*\nExample: Manila, Remote, Philippines"

const profileCompleteText = `✅ *Profile Complete!*

You can now browse available jobs.
Use: /jobs - See available work
/profile - View your profile`

const jobTitlePrompt = "📝 *Post a Job*\n\nEnter job title:"

const jobDescriptionPrompt = "📄 *Job Description:*\n\nDescribe what needs to be done."

const jobBudgetPrompt = "💰 *Budget:*\nExample: $100, ₱5000, Negotiable"

const restartFlowText = `⚠️ *Your job posting expired.*

Part of your draft was lost, so nothing was posted.
Please start again by choosing your role.`

const genericErrorText = "⚠️ *Something went wrong.* Please try again."

const unknownCommandText = `❓ *Unknown Command*

Available commands:
/start - Start the bot
/jobs - Browse jobs
/profile - View profile
/help - Get help
/getid - Get your Telegram ID`

const helpText = `🆘 *HELP & COMMANDS*

*For Everyone:*
/start - Start the bot
/profile - View your profile
/jobs - Browse available jobs
/help - Show this message
/getid - Get your Telegram ID

*For Freelancers:*
1. Register as freelancer
2. Set your skills & location
3. Browse /jobs
4. Contact clients directly

*For Clients:*
1. Register as client
2. Post jobs via conversation
3. Review freelancers
4. Pay directly

⚠️ *SAFETY TIPS:*
• Verify identity before payment
• Start with small projects
• Report issues immediately`

const noJobsText = "📭 *No jobs available yet.*\n\nCheck back later or post your own job!"

func renderJobPosted(j *models.Job) string {
	return fmt.Sprintf(`✅ *Job Posted Successfully!*

*Title:* %s
*Budget:* %s
*Job ID:* #%d

Freelancers will be notified.

⚠️ *Remember:*
• Payments are direct between parties
• Verify freelancer identity
• Use milestones for large projects`, j.Title, j.Budget, j.ID)
}

func renderJobNotification(j *models.Job) string {
	return fmt.Sprintf("📢 *NEW JOB AVAILABLE!*\n\nTitle: %s\nBudget: %s\n\nUse /jobs to browse all available work.", j.Title, j.Budget)
}

func renderJobList(jobs []models.Job) string {
	var b strings.Builder
	b.WriteString("📋 *Available Jobs*\n\n")
	for _, j := range jobs {
		fmt.Fprintf(&b, "*#%d* - %s\n", j.ID, j.Title)
		fmt.Fprintf(&b, "💰 *Budget:* %s\n", j.Budget)
		fmt.Fprintf(&b, "📅 *Posted:* %s\n\n", fmtDate(j.Created))
	}
	b.WriteString("💡 *How to apply:*\nContact the client directly.")
	return b.String()
}

const profileNotFoundText = "❌ *Profile not found.*\n\nPlease use /start to create your profile."

func renderProfile(u *models.User) string {
	return fmt.Sprintf(`👤 *YOUR PROFILE*

*Basic Information:*
• Username: @%s
• Role: %s
• Skills: %s
• Location: %s
• Member Since: %s

*Commands:*
/jobs - Browse available work
/help - Get assistance`,
		orNA(u.Username), orNA(titleCase(u.Role)), orNA(u.Skills), orNA(u.Location), fmtDate(u.Created))
}

func renderID(userID int64, username string) string {
	return fmt.Sprintf(`📋 *YOUR TELEGRAM INFO*

*User ID:* `+"`%d`"+`
*Username:* @%s

💡 *Your User ID is important for:*
• Admin verification
• Account recovery
• Technical support

⚠️ *Keep this information private!*`, userID, orNA(username))
}

func renderAdminIDNote(userID int64) string {
	return fmt.Sprintf("👑 *ADMIN NOTE:*\nYour ID is `%d`\nSet this as ADMIN_ID in the environment.", userID)
}

func renderDashboard(d *report.Dashboard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📊 *REAL-TIME ADMIN DASHBOARD*\n🕐 %s\n\n", d.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "👥 *USER STATISTICS:*\n• Total Users: %d\n• New Today: %d\n• Active Now: %d\n\n", d.TotalUsers, d.NewUsersToday, d.ActiveNow)
	fmt.Fprintf(&b, "📋 *JOB STATISTICS:*\n• Total Jobs: %d\n• New Today: %d\n\n", d.TotalJobs, d.NewJobsToday)
	b.WriteString("📈 *RECENT ACTIVITIES:*\n")
	if len(d.Recent) == 0 {
		b.WriteString("  No recent activities\n")
	}
	for _, a := range d.Recent {
		fmt.Fprintf(&b, "  • @%s: %s at %s\n", orNA(a.Username), a.Action, fmtClock(a.Created))
	}
	b.WriteString("\n⚡ *Quick Commands:*\n/users - View all users\n/alljobs - View all jobs\n/dailyreport - Daily report\n/analytics - Detailed analytics\n/viewuser [id] - View user details\n/broadcast [message] - Send to all users")
	return b.String()
}

const noUsersText = "📭 No users registered yet."

func renderUserList(users []models.User) string {
	var b strings.Builder
	b.WriteString("👥 *REGISTERED USERS*\n\n")
	for _, u := range users {
		fmt.Fprintf(&b, "👤 *User ID:* `%d`\n", u.ID)
		fmt.Fprintf(&b, "📛 *Username:* @%s\n", orNA(u.Username))
		fmt.Fprintf(&b, "🎯 *Role:* %s\n", orNA(titleCase(u.Role)))
		fmt.Fprintf(&b, "🛠️ *Skills:* %s\n", orNA(clip(u.Skills, 30)))
		fmt.Fprintf(&b, "📍 *Location:* %s\n", orNA(u.Location))
		fmt.Fprintf(&b, "📅 *Joined:* %s\n", fmtDate(u.Created))
		b.WriteString(strings.Repeat("─", 20) + "\n\n")
	}
	fmt.Fprintf(&b, "📊 *Total:* %d active users", len(users))
	return b.String()
}

const noJobsAdminText = "📭 No jobs posted yet."

func renderAdminJobList(jobs []models.Job) string {
	var b strings.Builder
	b.WriteString("📋 *ALL JOBS*\n\n")
	for _, j := range jobs {
		icon := "🟢"
		if j.Status != models.JobStatusOpen {
			icon = "🔴"
		}
		fmt.Fprintf(&b, "%s *Job #%d*\n", icon, j.ID)
		fmt.Fprintf(&b, "📌 *Title:* %s\n", j.Title)
		fmt.Fprintf(&b, "💰 *Budget:* %s\n", j.Budget)
		fmt.Fprintf(&b, "👤 *Client:* @%s\n", orNA(j.ClientHandle))
		fmt.Fprintf(&b, "📊 *Status:* %s\n", j.Status)
		fmt.Fprintf(&b, "📅 *Posted:* %s\n", fmtDate(j.Created))
		b.WriteString(strings.Repeat("─", 20) + "\n\n")
	}
	return b.String()
}

const viewUserUsage = "❌ Usage: /viewuser user_id\nExample: /viewuser 123456789"

func renderUserDetail(d *report.UserDetail) string {
	status := "🟢 ACTIVE"
	if d.User.Banned {
		status = "🔴 BANNED"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👤 *USER DETAILS: #%d*\n\n", d.User.ID)
	fmt.Fprintf(&b, "📝 *Basic Info:*\n• Username: @%s\n• Role: %s\n• Skills: %s\n• Location: %s\n• Status: %s\n• Joined: %s\n\n",
		orNA(d.User.Username), orNA(titleCase(d.User.Role)), orNA(d.User.Skills), orNA(d.User.Location), status, fmtDate(d.User.Created))
	fmt.Fprintf(&b, "📊 *Statistics:*\n• Jobs Posted: %d\n\n", d.JobsPosted)
	b.WriteString("📈 *Recent Activities:*")
	if len(d.Activities) == 0 {
		b.WriteString("\n  No recent activities")
	}
	for _, a := range d.Activities {
		fmt.Fprintf(&b, "\n  • %s: %s at %s", a.Action, clip(a.Details, 30), fmtClock(a.Created))
	}
	fmt.Fprintf(&b, "\n\n⚡ *Admin Actions:*\n/ban_%d - Ban this user\n/unban_%d - Unban this user", d.User.ID, d.User.ID)
	return b.String()
}

func renderDailyReport(m *models.DailyMetric) string {
	return fmt.Sprintf(`📅 *DAILY REPORT: %s*

📊 *Platform Performance:*
• New Users: %d
• New Jobs: %d
• Active Users: %d`, m.Date, m.NewUsers, m.NewJobs, m.ActiveUsers)
}

const noAnalyticsText = "📭 No analytics data available yet."

func renderWeekly(w *report.Weekly) string {
	var b strings.Builder
	b.WriteString("📊 *7-DAY ANALYTICS*\n\n")
	for _, d := range w.Days {
		fmt.Fprintf(&b, "📅 %s: 👥%d 💼%d 🔥%d\n", d.Date, d.NewUsers, d.NewJobs, d.ActiveUsers)
	}
	fmt.Fprintf(&b, "\n📈 *Weekly Totals:*\n• Total New Users: %d\n• Total New Jobs: %d\n• Total Active Users: %d\n\n",
		w.TotalNewUsers, w.TotalNewJobs, w.TotalActiveUsers)
	fmt.Fprintf(&b, "📊 *Daily Averages:*\n• Avg Users/Day: %.1f\n• Avg Jobs/Day: %.1f\n• Avg Active/Day: %.1f\n\n",
		w.AvgNewUsers, w.AvgNewJobs, w.AvgActiveUsers)
	b.WriteString("📋 *Legend:*\n• 👥 = New Users\n• 💼 = New Jobs\n• 🔥 = Active Users")
	return b.String()
}

const broadcastUsage = "❌ Usage: /broadcast your message here\nExample: /broadcast New feature added! Check /help"

func renderBroadcastConfirm(text string) string {
	return fmt.Sprintf("📢 *BROADCAST CONFIRMATION*\n\n*Message:* %s\n\nThis will be sent to ALL users. Continue?", clip(text, 100))
}

const broadcastSendingText = "📤 Sending broadcast to all users..."
const broadcastCancelledText = "❌ Broadcast cancelled."
const broadcastInvalidText = "❌ Broadcast draft expired or is invalid. Send /broadcast again."

func renderAnnouncement(text string) string {
	return fmt.Sprintf("📢 *ANNOUNCEMENT*\n\n%s\n\n_This is a broadcast message from SideHustle Bot_", text)
}

func renderBroadcastReport(res dispatch.Result, text string) string {
	return fmt.Sprintf("✅ *BROADCAST COMPLETE*\n\n*Total Users:* %d\n*Successfully Sent:* %d\n*Failed:* %d\n\n*Message:* %s",
		res.Total, res.Succeeded, res.Failed, clip(text, 100))
}

func fmtDate(millis int64) string {
	if millis == 0 {
		return "N/A"
	}
	return time.UnixMilli(millis).UTC().Format("2006-01-02")
}

func fmtClock(millis int64) string {
	if millis == 0 {
		return "N/A"
	}
	return time.UnixMilli(millis).UTC().Format("15:04")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func titleCase(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
