package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/asadnewbie/livecap/internal/config"
	"github.com/asadnewbie/livecap/internal/logging"
	"github.com/asadnewbie/livecap/pkg/capture"
)

func newRecordCmd() *cobra.Command {
	var (
		kindFlag   string
		deviceFlag string
		outPath    string
		duration   time.Duration
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Capture raw signed 16-bit little-endian PCM to a file or stdout",
		Long: `Record opens a capture session on the selected device and writes every
delivered PCM chunk to the output until interrupted or --duration elapses.
The output carries no header; the negotiated sample rate and channel count
are logged at startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			log := logging.NewWithLevel(cfg.LogLevel)

			if kindFlag == "" {
				kindFlag = cfg.Capture.Kind
			}
			if deviceFlag == "" {
				deviceFlag = cfg.Capture.DeviceID
			}
			kind, err := parseKind(kindFlag)
			if err != nil {
				return err
			}

			var out io.Writer = cmd.OutOrStdout()
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				out = f
			}

			eng, err := capture.NewEngine(log)
			if err != nil {
				return err
			}
			defer eng.Close()

			sess, err := eng.Open(kind, deviceFlag,
				capture.WithChunkSamples(cfg.Delivery.ChunkSamples),
				capture.WithTickInterval(time.Duration(cfg.Delivery.TickIntervalMs)*time.Millisecond),
				capture.WithBufferCapacity(cfg.Delivery.BufferSamples),
			)
			if err != nil {
				return err
			}

			log.Info().
				Str("device", sess.Device().Name).
				Int("sampleRate", sess.SampleRate()).
				Int("channels", sess.Channels()).
				Msg("Recording; Ctrl-C to stop")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			var written atomic.Int64
			if err := sess.Start(func(chunk capture.Chunk) {
				n, err := out.Write(chunk)
				written.Add(int64(n))
				if err != nil {
					log.Error().Err(err).Msg("Write failed, stopping")
					stop()
				}
			}); err != nil {
				return err
			}

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				// Stop must come from outside the delivery callback.
				<-gctx.Done()
				sess.Stop()
				return nil
			})
			g.Go(func() error {
				// Liveness: stalled byte counts mean the stream died
				// upstream even though no error surfaced.
				tick := time.NewTicker(time.Second)
				defer tick.Stop()
				for {
					select {
					case <-gctx.Done():
						return nil
					case <-tick.C:
						log.Debug().Int64("bytes", written.Load()).Msg("Captured so far")
					}
				}
			})
			if err := g.Wait(); err != nil {
				return err
			}

			log.Info().Int64("bytes", written.Load()).Msg("Recording finished")
			return nil
		},
	}

	cmd.Flags().StringVar(&kindFlag, "kind", "", "device kind: input or loopback (default from config)")
	cmd.Flags().StringVar(&deviceFlag, "device", "", "device name (default: platform default device)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "-", "output file, - for stdout")
	cmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long (0 records until interrupted)")
	return cmd
}
