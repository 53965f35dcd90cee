// Package cli implements the interactive FileKeeper command-line client:
// a small REPL over the HTTP API with one command per server operation.
package cli

import (
	"bufio"
	"context"
	"os"

	"github.com/dmitrijs2005/filekeeper/internal/client/api"
	"github.com/dmitrijs2005/filekeeper/internal/client/config"
)

type App struct {
	config   *config.Config
	client   *api.Client
	userName string
	reader   *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {
	apiClient := api.NewClient(c.ServerEndpointAddr, c.RequestTimeout)
	return &App{config: c, client: apiClient, reader: bufio.NewReader(os.Stdin)}, nil
}

func (a *App) isLoggedIn() bool {
	return a.userName != ""
}

func (a *App) Run(ctx context.Context) {
	scanner := bufio.NewScanner(os.Stdin)
	runREPL(ctx, a, a.status, scanner)
}

// status renders the prompt segment showing who is logged in.
func (a *App) status() string {
	if !a.isLoggedIn() {
		return "not logged in"
	}
	return a.userName
}
