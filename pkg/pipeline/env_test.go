package pipeline

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/skillcat/pkg/collect"
)

func collectEnv() collect.Env {
	return collect.Env{API: scenario(), Logger: log.New(io.Discard)}
}
