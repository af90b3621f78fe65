package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Fragoler/simple-tactics-client/internal/client"
	"github.com/Fragoler/simple-tactics-client/internal/effects"
	"github.com/Fragoler/simple-tactics-client/internal/event"
	"github.com/Fragoler/simple-tactics-client/internal/recording"
	"github.com/Fragoler/simple-tactics-client/internal/world"
	"github.com/Fragoler/simple-tactics-client/pkg/api"
	"github.com/Fragoler/simple-tactics-client/pkg/logger"
	"github.com/pkg/errors"
)

func main() {
	// stdout занят отчетом
	logger.InitWithOutput(os.Stderr)

	var statePath, recordingPath string
	var speed float64
	flag.StringVar(&statePath, "state", "", "gameState JSON to replay the batch against")
	flag.StringVar(&recordingPath, "recording", "", "Replay a whole .tcrec session recording instead of one batch")
	flag.Float64Var(&speed, "speed", 1, "Playback speed used for timings")
	flag.Usage = printHelp
	flag.Parse()

	if recordingPath != "" {
		if err := replayRecording(os.Stdout, recordingPath); err != nil {
			logger.Log.WithError(err).Fatal("effectcheck failed")
		}
		return
	}

	if flag.NArg() != 1 {
		printHelp()
		os.Exit(2)
	}

	if err := run(os.Stdout, flag.Arg(0), statePath, speed); err != nil {
		logger.Log.WithError(err).Fatal("effectcheck failed")
	}
}

func run(out io.Writer, batchPath, statePath string, speed float64) error {
	dtos, err := loadBatch(batchPath)
	if err != nil {
		return err
	}

	parsed, dropped := effects.ParseBatch(dtos)
	printPlan(out, parsed, dropped, effects.DelayAnimator{Speed: speed})

	if statePath == "" {
		return nil
	}

	var state api.GameStateDTO
	if err := readJSON(statePath, &state); err != nil {
		return err
	}
	return replay(out, state, parsed)
}

// loadBatch принимает массив эффектов или целое сообщение сервера {"type":"effects",...}.
func loadBatch(path string) ([]api.EffectDTO, error) {
	var raw json.RawMessage
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}

	var dtos []api.EffectDTO
	if err := json.Unmarshal(raw, &dtos); err == nil {
		return dtos, nil
	}

	var msg api.ServerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil, errors.Wrap(err, "decode batch")
	}
	if msg.Type != api.MsgEffects {
		return nil, errors.Errorf("expected %q message, got %q", api.MsgEffects, msg.Type)
	}
	if err := json.Unmarshal(msg.Payload, &dtos); err != nil {
		return nil, errors.Wrap(err, "decode effects payload")
	}
	return dtos, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "read %s", path)
	}
	return errors.Wrapf(json.Unmarshal(data, v), "decode %s", path)
}

func printPlan(out io.Writer, parsed []effects.Effect, dropped int, timing effects.DelayAnimator) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tKIND\tID\tUNIT\tDURATION")

	var total time.Duration
	for i, e := range parsed {
		d := timing.Delay(e)
		total += d
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\n", i+1, e.Kind(), e.Info().ID, e.Info().UnitID, d)
	}
	w.Flush()

	fmt.Fprintf(out, "\nplayable: %d, dropped: %d, total: %s\n", len(parsed), dropped, total)
}

// replay проигрывает пачку без анимаций поверх снапшота и печатает результат каждого эффекта.
func replay(out io.Writer, state api.GameStateDTO, parsed []effects.Effect) error {
	rec := &event.Recorder{}
	store := world.NewStore(rec, world.DefaultMaxLogs)
	store.Update(client.ToSnapshot(state))

	player := effects.NewPlayer(store, effects.NopAnimator{}, rec)
	player.Enqueue(parsed...)
	if err := player.Drain(context.Background()); err != nil {
		return errors.Wrap(err, "replay")
	}

	fmt.Fprintln(out, "\nreplay:")
	for _, e := range rec.Events() {
		if f, ok := e.(event.EffectFinished); ok {
			status := "ok"
			if f.Err != nil {
				status = f.Err.Error()
			}
			fmt.Fprintf(out, "  %s %s: %s\n", f.Kind, f.ID, status)
		}
	}

	fmt.Fprintln(out, "\nunits after replay:")
	for _, u := range store.Units() {
		fmt.Fprintf(out, "  #%d at %s hp %d/%d\n", u.ID, u.Coords, u.CurHealth, u.MaxHealth)
	}
	return nil
}

// replayRecording прогоняет запись через офлайн-сессию: каждое сообщение разбирается,
// эффекты проигрываются без анимаций до следующего сообщения.
func replayRecording(out io.Writer, path string) error {
	rec, err := recording.Load(path)
	if err != nil {
		return err
	}

	cfg := client.NewConfig()
	cfg.GameToken = rec.GameToken
	s := client.NewSession(cfg, nil, effects.NopAnimator{})

	finished := s.Bus.Subscribe("effectcheck", 4096)
	played, failed := 0, 0

	for _, m := range rec.Messages {
		s.HandleMessage(m.ServerMessage)
		if err := s.Effects.Drain(context.Background()); err != nil {
			return errors.Wrap(err, "replay")
		}
		for drained := false; !drained; {
			select {
			case e := <-finished:
				if f, ok := e.(event.EffectFinished); ok {
					played++
					if f.Err != nil {
						failed++
					}
				}
			default:
				drained = true
			}
		}
	}

	fmt.Fprintf(out, "recording %s: %d messages over %s\n", rec.GameToken, len(rec.Messages), lastOffset(rec))
	fmt.Fprintf(out, "effects played: %d, failed: %d\n", played, failed)

	fmt.Fprintln(out, "\nunits at the end:")
	for _, u := range s.World.Units() {
		fmt.Fprintf(out, "  #%d player %d at %s hp %d/%d\n", u.ID, u.PlayerID, u.Coords, u.CurHealth, u.MaxHealth)
	}

	fmt.Fprintln(out, "\nlast log entries:")
	for i, entry := range s.World.Logs() {
		if i == 10 {
			break
		}
		fmt.Fprintf(out, "  [%s] %s\n", entry.Type, entry.Message)
	}
	return nil
}

func lastOffset(rec *recording.Recording) time.Duration {
	if len(rec.Messages) == 0 {
		return 0
	}
	return rec.Messages[len(rec.Messages)-1].Offset
}

func printHelp() {
	fmt.Fprintln(os.Stderr, `Effect Check - проверка пачки эффектов сервера
Usage:
  effectcheck [-state gameState.json] [-speed 1] effects.json
  effectcheck -recording session.tcrec

effects.json          - массив эффектов или сообщение {"type":"effects","payload":[...]}
-state <file>         - проиграть пачку поверх снапшота и показать итоговых юнитов
-speed <x>            - множитель скорости для расчета длительностей
-recording <file>     - прогнать запись сессии, сделанную клиентом с -record`)
}
