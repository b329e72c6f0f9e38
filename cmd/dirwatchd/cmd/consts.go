package cmd

const (
	CheckDocumentString = `
You might want to check the example configuration shipped under
misc/config/ for some help.
`
	DirwatchdCfgPath = "/etc/dirwatchd/config.yaml"
)
