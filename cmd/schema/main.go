package main

import (
	"encoding/json"
	"flag"
	"os"
	"path/filepath"

	"github.com/Fragoler/simple-tactics-client/pkg/api"
	"github.com/Fragoler/simple-tactics-client/pkg/logger"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
)

// Protocol - все сообщения, которыми клиент обменивается с сервером.
// Нужен только как корень для генерации схемы.
type Protocol struct {
	Envelope  api.ServerMessage         `json:"envelope"`
	Actions   []api.ActionDefinitionDTO `json:"actions"`
	GameState api.GameStateDTO          `json:"gameState"`
	PlayerID  api.PlayerDTO             `json:"playerId"`
	Effects   []api.EffectDTO           `json:"effects"`
	Command   api.ClientCommand         `json:"command"`
	Submit    api.SubmitActionsPayload  `json:"submit"`
}

func main() {
	logger.InitWithOutput(os.Stderr)

	var outPath string
	flag.StringVar(&outPath, "out", "", "path to write the JSON schema")
	flag.Parse()

	if outPath == "" {
		logger.Log.Fatal("-out is required")
	}

	if err := writeSchema(outPath, buildSchema()); err != nil {
		logger.Log.WithError(err).Fatal("failed to write schema")
	}
	logger.Log.WithField("path", outPath).Info("Schema written")
}

func buildSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: true,
	}
	schema := reflector.Reflect(new(Protocol))
	schema.Title = "Simple Tactics Client Protocol"
	schema.Description = "Server messages and client commands exchanged over the game websocket"
	return schema
}

func writeSchema(outPath string, schema *jsonschema.Schema) error {
	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal schema")
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return errors.Wrap(err, "create schema directory")
	}

	tmpPath := outPath + ".tmp"
	if err := os.WriteFile(tmpPath, append(data, '\n'), 0o644); err != nil {
		return errors.Wrap(err, "write temp schema")
	}

	return errors.Wrap(os.Rename(tmpPath, outPath), "replace schema")
}
