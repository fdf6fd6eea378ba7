package data

// populated with -ldflags at build time
var (
	Version   string
	GitCommit string
	GitBranch string
)
