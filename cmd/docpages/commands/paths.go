package commands

import (
	"encoding/json"
	"fmt"

	"git.home.luguber.info/inful/docpages/internal/content"
)

// PathsCmd implements the 'paths' command.
type PathsCmd struct {
	JSON bool `help:"Print the routes as a JSON array of {project, page, url} objects"`
}

type pathEntry struct {
	Project string `json:"project"`
	Page    string `json:"page"`
	URL     string `json:"url"`
}

func (p *PathsCmd) Run(g *Global) error {
	logger := g.Logger
	repo := content.NewRepository(content.NewScanner(g.Config.Content.Root, logger), logger)
	paths := repo.StaticPaths()

	if p.JSON {
		entries := make([]pathEntry, 0, len(paths))
		for _, sp := range paths {
			entries = append(entries, pathEntry{Project: sp.Project, Page: sp.Page, URL: sp.URL()})
		}
		enc := json.NewEncoder(g.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	for _, sp := range paths {
		if _, err := fmt.Fprintln(g.Stdout, sp.URL()); err != nil {
			return err
		}
	}
	return nil
}
