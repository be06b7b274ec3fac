// Command equiptalk is a terminal voice assistant: talk to the model through
// the microphone, hear the answers, and follow the conversation on screen.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"

	orchestration "github.com/koscakluka/equiptalk-voice/core"
	"github.com/koscakluka/equiptalk-voice/core/live/relay"
	"github.com/koscakluka/equiptalk-voice/internal/config"
)

const defaultSystemInstruction = `You are Equiptalk, an expert virtual assistant for manufacturing equipment.

Detect the language of the user and respond in that same language.
Speak naturally and concisely and avoid long monologues.
Cite concrete technical figures when you know them.
Do not use markdown tables; use clear sentences.`

func main() {
	printSchema := flag.Bool("protocol-schema", false, "print the JSON schema of the websocket relay protocol and exit")
	flag.Parse()

	if *printSchema {
		if err := writeProtocolSchema(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func writeProtocolSchema() error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(relay.ProtocolSchema()); err != nil {
		return fmt.Errorf("failed to encode protocol schema: %w", err)
	}
	return nil
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	instruction, err := cfg.SystemInstruction(defaultSystemInstruction)
	if err != nil {
		return err
	}

	backend, err := newAudioBackend(cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	dialer, err := newLiveDialer(ctx, cfg, instruction)
	if err != nil {
		return err
	}

	synthesizer, err := newSynthesizer(ctx, cfg)
	if err != nil {
		return err
	}

	var program *tea.Program
	send := func(msg tea.Msg) {
		if program != nil {
			program.Send(msg)
		}
	}

	opts := []orchestration.ControllerOption{
		orchestration.WithMicrophone(backend.microphone),
		orchestration.WithSpeaker(backend.speaker),
		orchestration.WithLiveDialer(dialer),
		orchestration.WithResetSettleDelay(cfg.ResetSettleDelay()),
		orchestration.WithStateChangedCallback(func(state orchestration.State) { send(stateMsg(state)) }),
		orchestration.WithLiveTranscriptCallback(func(transcript string) { send(liveTranscriptMsg(transcript)) }),
		orchestration.WithTurnCallback(func(turn orchestration.Turn) { send(turnMsg(turn)) }),
		orchestration.WithErrorCallback(func(err *orchestration.SessionError) { send(errorMsg(err.Message)) }),
		orchestration.WithSpeakingStateChangedCallback(func(speaking bool) { send(speakingMsg(speaking)) }),
	}
	if synthesizer != nil {
		opts = append(opts, orchestration.WithSynthesizer(synthesizer))
	}

	controller := orchestration.NewController(opts...)
	defer controller.Close()

	program = tea.NewProgram(newModel(ctx, controller), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("terminal ui failed: %w", err)
	}
	return nil
}
