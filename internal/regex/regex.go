package regex

import "regexp"

var (
	// Summary line labels, stripped case-insensitively from generated text
	SummaryLabel = regexp.MustCompile(`(?i)^SUMMARY:\s*`)
	FilesLabel   = regexp.MustCompile(`(?i)^FILES:\s*`)
	ImpactLabel  = regexp.MustCompile(`(?i)^IMPACT:\s*`)

	// Authorization header of the scheduled and bulk endpoints
	BearerToken = regexp.MustCompile(`^Bearer\s+(\S+)$`)

	// Repository references given on the command line
	RepoSlug  = regexp.MustCompile(`^([A-Za-z0-9][A-Za-z0-9-]*)/([A-Za-z0-9._-]+)$`)
	SSHRepo   = regexp.MustCompile(`git@([^:]+):([^/]+)/(.+)\.git$`)
	HTTPSRepo = regexp.MustCompile(`https://([^/]+)/([^/]+)/(.+?)(?:\.git)?$`)
)
