// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
)

type Id int

const (
	ConfigLoadFailedId Id = iota + 1
	SourcesNotFoundId
	SourceDirNotFoundId
	InnoextractNotFoundId
	GOGDBUnavailableId
	ManifestWriteFailedId
	ExtractionFailedId
)

type MarkdownMsg string

type HttpLink string

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink
	extLinks []HttpLink // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

// Render renders the issue Markdown with the given glamour style ("dark", "light", "notty").
func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n## See also\n"
		for _, link := range i.docLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
		for _, link := range i.extLinks {
			extraMd += "\n- <" + string(link) + ">"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load settings!

The settings file could not be read or does not match the expected schema.

## Things you can try:
- Show where settings are loaded from:
~~~
$ gogunpack config path
~~~
- Check the file for CUE/JSON syntax errors (the message above names the field)
- Remove the file to fall back to defaults and environment variables`,
	}

	sourcesNotFoundIssue = &Issue{
		id: SourcesNotFoundId,
		mdMsg: `
# No sources document configured!

gogunpack needs a sources document describing which installer trees to unpack.

## Things you can try:
- Point CONFIG_PATH (or ` + "`sources_file`" + ` in config.cue) at the document
- Use this shape (comments and trailing commas are fine):
~~~json
{
  "gog_games": {
    "source_type": "gog-games",
    "source_directory": "/mnt/dumps/gog-games",
    "default_destination_directory": "/mnt/games",
    "possible_destination_directories": ["/mnt/games-archive"],
    "ignores": ["*_old"],
    "overrides": {},
  },
}
~~~`,
	}

	sourceDirNotFoundIssue = &Issue{
		id: SourceDirNotFoundId,
		mdMsg: `
# Source directory not found!

A configured ` + "`source_directory`" + ` does not exist or is not a directory.
The source is skipped; other sources are still processed.

## Things you can try:
- Check that the share or disk holding the installers is mounted
- Fix the path in the sources document`,
	}

	innoextractNotFoundIssue = &Issue{
		id: InnoextractNotFoundId,
		mdMsg: `
# innoextract not found!

Installers are unpacked with the external ` + "`innoextract`" + ` tool, which could not be executed.

## Things you can try:
- Install innoextract (1.9 or newer is required for recent GOG installers)
- Set INNOEXTRACT_PATH to the binary location`,
		extLinks: []HttpLink{"https://constexpr.org/innoextract/"},
	}

	gogdbUnavailableIssue = &Issue{
		id: GOGDBUnavailableId,
		mdMsg: `
# Lookup database unavailable!

The local product database could not be downloaded or failed validation.
Game names fall back to info files and folder names.

## Things you can try:
- Check GOGDB_URL and network access
- Force a refresh:
~~~
$ gogunpack gogdb update
~~~`,
		extLinks: []HttpLink{"https://www.gogdb.org/"},
	}

	manifestWriteFailedIssue = &Issue{
		id: ManifestWriteFailedId,
		mdMsg: `
# Failed to write manifest!

The computed manifest could not be saved, so no games were extracted for this source.

## Things you can try:
- Check MANIFESTS_OUTPUT_DIR exists and is writable
- Check free disk space`,
	}

	extractionFailedIssue = &Issue{
		id: ExtractionFailedId,
		mdMsg: `
# Some games failed to extract!

Failed destinations were removed. The innoextract log for each failed
installer is kept in the log directory.

## Things you can try:
- Re-run a single game with verbose output:
~~~
$ gogunpack unpack --config <key> --game <game-key> --verbose
~~~
- Pin the installer order for the game with an ` + "`overrides`" + ` entry`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		sourcesNotFoundIssue.Id():     sourcesNotFoundIssue,
		sourceDirNotFoundIssue.Id():   sourceDirNotFoundIssue,
		innoextractNotFoundIssue.Id(): innoextractNotFoundIssue,
		gogdbUnavailableIssue.Id():    gogdbUnavailableIssue,
		manifestWriteFailedIssue.Id(): manifestWriteFailedIssue,
		extractionFailedIssue.Id():    extractionFailedIssue,
	}
)

func Get(id Id) *Issue {
	return issues[id]
}
