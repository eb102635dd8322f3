package mailer

import (
	"fmt"
	"html/template"
	"strconv"
	"strings"

	"velocity/internal/domain/joblisting"
)

var digestTmpl = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f5f5f5; line-height: 1.5;">
  <table width="100%" cellpadding="0" cellspacing="0" style="background-color: #f5f5f5; padding: 40px 20px;">
    <tr>
      <td align="center">
        <table width="600" cellpadding="0" cellspacing="0" style="background-color: #ffffff; border-radius: 8px; overflow: hidden;">
          <tr>
            <td style="padding: 32px 40px; border-bottom: 1px solid #e5e5e5;">
              <h1 style="margin: 0; color: #333; font-size: 20px; font-weight: 600;">Velocity</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px 40px;">
              <p style="margin: 0 0 20px 0; color: #333; font-size: 15px;">Hi {{.UserName}},</p>
              <p style="margin: 0 0 24px 0; color: #333; font-size: 15px;">
                We found <strong>{{.JobCount}} new job{{.Plural}}</strong> matching your alert for <strong>&quot;{{.AlertTitle}}&quot;</strong>.
              </p>
              <table width="100%" cellpadding="0" cellspacing="0">
                {{range .Jobs}}
                <tr>
                  <td style="padding: 20px 0; border-bottom: 1px solid #e5e5e5;">
                    <table width="100%" cellpadding="0" cellspacing="0">
                      <tr>
                        <td>
                          <h3 style="margin: 0 0 4px 0; color: #333; font-size: 16px; font-weight: 600;">{{.Title}}</h3>
                          <p style="margin: 0 0 8px 0; color: #666; font-size: 14px;">{{.Company}}{{if .Location}} &bull; {{.Location}}{{end}}</p>
                          <p style="margin: 0; color: #888; font-size: 13px;">{{.EmploymentType}}{{if .Salary}} &bull; {{.Salary}}{{end}}{{if .IsRemote}} &bull; Remote{{end}}</p>
                        </td>
                        <td style="text-align: right; vertical-align: middle; width: 100px;">
                          <a href="{{.ApplyLink}}" target="_blank" style="display: inline-block; background: #2563eb; color: white; padding: 8px 16px; border-radius: 6px; text-decoration: none; font-size: 13px; font-weight: 500;">Apply</a>
                        </td>
                      </tr>
                    </table>
                  </td>
                </tr>
                {{end}}
              </table>
              <p style="margin: 32px 0 0 0; color: #666; font-size: 14px;">Good luck with your job search!</p>
            </td>
          </tr>
          <tr>
            <td style="padding: 24px 40px; background-color: #f9f9f9; border-top: 1px solid #e5e5e5;">
              <p style="margin: 0; color: #888; font-size: 12px;">
                You're receiving this email because you set up a job alert on Velocity.<br>
                To manage your alerts, visit your dashboard.
              </p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`))

type digestView struct {
	UserName   string
	AlertTitle string
	JobCount   int
	Plural     string
	Jobs       []jobView
}

type jobView struct {
	Title          string
	Company        string
	Location       string
	EmploymentType string
	Salary         string
	IsRemote       bool
	ApplyLink      string
}

func renderHTML(d Digest) (string, error) {
	view := digestView{
		UserName:   displayName(d.UserName),
		AlertTitle: d.AlertTitle,
		JobCount:   len(d.Jobs),
		Jobs:       make([]jobView, 0, len(d.Jobs)),
	}
	if len(d.Jobs) != 1 {
		view.Plural = "s"
	}
	for _, j := range d.Jobs {
		et := j.EmploymentType
		if et == "" {
			et = "Full-time"
		}
		view.Jobs = append(view.Jobs, jobView{
			Title:          j.Title,
			Company:        j.Company,
			Location:       j.Location,
			EmploymentType: et,
			Salary:         formatSalary(j.Salary),
			IsRemote:       j.IsRemote,
			ApplyLink:      j.ApplyLink,
		})
	}

	var b strings.Builder
	if err := digestTmpl.Execute(&b, view); err != nil {
		return "", err
	}
	return b.String(), nil
}

// renderText is the plain-text fallback for clients that reject HTML.
func renderText(d Digest) string {
	var b strings.Builder
	plural := ""
	if len(d.Jobs) != 1 {
		plural = "s"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", displayName(d.UserName))
	fmt.Fprintf(&b, "We found %d new job%s matching your alert for %q:\n\n", len(d.Jobs), plural, d.AlertTitle)
	for i, j := range d.Jobs {
		fmt.Fprintf(&b, "%d. %s at %s", i+1, j.Title, j.Company)
		if j.Location != "" {
			fmt.Fprintf(&b, " (%s)", j.Location)
		}
		fmt.Fprintf(&b, "\n   Apply: %s\n\n", j.ApplyLink)
	}
	b.WriteString("Good luck with your job search!\n\n---\nVelocity - Job Search Made Simple")
	return b.String()
}

func displayName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "there"
	}
	return name
}

func formatSalary(s joblisting.Salary) string {
	if s.Min == 0 && s.Max == 0 {
		return ""
	}
	currency := s.Currency
	if currency == "" {
		currency = "USD"
	}
	if s.Min > 0 && s.Max > 0 {
		return fmt.Sprintf("%s %s - %s", currency, groupDigits(s.Min), groupDigits(s.Max))
	}
	v := s.Min
	if v == 0 {
		v = s.Max
	}
	return fmt.Sprintf("%s %s", currency, groupDigits(v))
}

func groupDigits(v int64) string {
	s := strconv.FormatInt(v, 10)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	if neg {
		return "-" + s
	}
	return s
}
