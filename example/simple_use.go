package main

import (
	"fmt"
	"time"

	"github.com/lhpt2/portmidi/internal/logger"
	"github.com/lhpt2/portmidi/sdk/contracts"
	"github.com/lhpt2/portmidi/sdk/midi"
)

func main() {
	log := logger.NewZapLogger()

	registry, err := midi.NewRegistry(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
	)
	if err != nil {
		log.Error("Failed to initialize MIDI registry", log.Field().Error("error", err))
		return
	}
	defer registry.Close()

	devices, err := registry.Devices()
	if err != nil || len(devices) == 0 {
		log.Error("No MIDI devices found or error listing devices", log.Field().Error("error", err))
		return
	}
	fmt.Println("Available MIDI devices:")
	for _, dev := range devices {
		fmt.Printf("  [%d] %s (%s) input=%v output=%v\n",
			dev.ID, dev.Name, dev.Interface, dev.IsInput, dev.IsOutput)
	}

	out, err := registry.DefaultOutputPort(midi.DefaultBufferSize)
	if err != nil {
		log.Error("Failed to open default output", log.Field().Error("error", err))
		return
	}
	defer out.Close()

	// Middle C, forte, for half a second.
	noteOn := contracts.Message{Status: contracts.NoteOn, Data1: 60, Data2: 100}
	noteOff := contracts.Message{Status: contracts.NoteOff, Data1: 60, Data2: 0}

	if err := out.WriteMessage(noteOn); err != nil {
		log.Error("Failed to send note on", log.Field().Error("error", err))
		return
	}
	time.Sleep(500 * time.Millisecond)
	if err := out.WriteMessage(noteOff); err != nil {
		log.Error("Failed to send note off", log.Field().Error("error", err))
		return
	}

	in, err := registry.DefaultInputPort(midi.DefaultBufferSize)
	if err != nil {
		log.Error("Failed to open default input", log.Field().Error("error", err))
		return
	}
	defer in.Close()

	fmt.Println("Listening for MIDI events for 10 seconds...")
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		event, err := in.Read()
		if err != nil {
			log.Error("Read failed", log.Field().Error("error", err))
			return
		}
		if event == nil {
			time.Sleep(time.Millisecond)
			continue
		}
		log.Info("MIDI event",
			log.Field().Uint64("timestamp", uint64(event.Timestamp)),
			log.Field().Uint8("status", event.Message.Status),
			log.Field().Uint8("data1", event.Message.Data1),
			log.Field().Uint8("data2", event.Message.Data2),
		)
	}
}
