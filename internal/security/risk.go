package security

import (
	"regexp"
	"strings"
)

// RiskLevel classifies a shell command for display in confirmation prompts.
// It never blocks execution on its own.
type RiskLevel int

const (
	RiskLow RiskLevel = iota
	RiskCaution
	RiskHigh
)

func (r RiskLevel) String() string {
	switch r {
	case RiskCaution:
		return "caution"
	case RiskHigh:
		return "high"
	default:
		return "low"
	}
}

// Assessment is the result of RiskAssessor.Assess.
type Assessment struct {
	Level  RiskLevel
	Reason string
}

type substringRule struct {
	substring string
	reason    string
}

type riskRule struct {
	pattern *regexp.Regexp
	level   RiskLevel
	reason  string
}

// RiskAssessor matches commands against known destructive patterns.
type RiskAssessor struct {
	substrings []substringRule
	rules      []riskRule
}

// NewRiskAssessor creates an assessor with the default rule set.
func NewRiskAssessor() *RiskAssessor {
	return &RiskAssessor{
		substrings: []substringRule{
			{"mkfs", "filesystem format"},
			{"> /dev/sd", "raw write to a block device"},
			{"of=/dev/sd", "raw write to a block device"},
			{"of=/dev/nvme", "raw write to a block device"},
			{"chmod -R 777 /", "recursive permission change from root"},
			{":(){ :|:& };:", "fork bomb"},
			{"/dev/tcp/", "raw network socket"},
			{"/etc/shadow", "access to password hashes"},
			{".ssh/id_", "access to SSH private keys"},
			{".aws/credentials", "access to cloud credentials"},
		},
		rules: []riskRule{
			{regexp.MustCompile(`\brm\s+-[a-zA-Z]*[rR][a-zA-Z]*\s+(/|/\*|~|~/|\$HOME)(\s|$)`), RiskHigh, "recursive delete of the root or home directory"},
			{regexp.MustCompile(`\b(curl|wget)\b[^|]*\|\s*(sudo\s+)?(ba|z)?sh\b`), RiskHigh, "pipes a download into a shell"},
			{regexp.MustCompile(`\brm\s+-[a-zA-Z]*[rf]`), RiskCaution, "deletes files"},
			{regexp.MustCompile(`^\s*sudo\b|\|\s*sudo\b`), RiskCaution, "runs with elevated privileges"},
			{regexp.MustCompile(`\b(shutdown|reboot|halt|poweroff)\b`), RiskCaution, "affects system power state"},
			{regexp.MustCompile(`\bgit\s+(push\s+.*--force|reset\s+--hard|clean\s+-[a-zA-Z]*f)`), RiskCaution, "discards git state"},
			{regexp.MustCompile(`\b(kill|pkill|killall)\b`), RiskCaution, "terminates processes"},
			{regexp.MustCompile(`(^|[^>])>\s*[^>&\s]`), RiskCaution, "overwrites a file"},
		},
	}
}

// Assess returns the highest risk matched by command.
func (a *RiskAssessor) Assess(command string) Assessment {
	normalized := strings.Join(strings.Fields(command), " ")

	for _, rule := range a.substrings {
		if strings.Contains(normalized, rule.substring) {
			return Assessment{Level: RiskHigh, Reason: rule.reason}
		}
	}

	best := Assessment{Level: RiskLow}
	for _, rule := range a.rules {
		if rule.level > best.Level && rule.pattern.MatchString(normalized) {
			best = Assessment{Level: rule.level, Reason: rule.reason}
		}
	}
	return best
}
