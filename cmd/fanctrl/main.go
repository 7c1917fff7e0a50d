// Command fanctrl drives a PWM fan from a thermal zone temperature.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"

	"github.com/sweeney/fanctrl/internal/control"
	"github.com/sweeney/fanctrl/internal/mqtt"
	"github.com/sweeney/fanctrl/internal/pwm"
	"github.com/sweeney/fanctrl/internal/sensor"
	"github.com/sweeney/fanctrl/internal/status"
	"github.com/sweeney/fanctrl/internal/tach"
	"github.com/sweeney/fanctrl/internal/web"
)

type options struct {
	ConfigFile string `short:"c" long:"config" no-ini:"true" description:"Path to key=value configuration file"`

	Watch   string `short:"w" long:"watch" default:"/sys/class/thermal/thermal_zone0" description:"Thermal zone directory to sample"`
	Execute string `short:"e" long:"execute" default:"/sys/class/pwm/pwmchip0" description:"PWM chip directory to drive"`
	Channel uint   `long:"channel" default:"0" description:"PWM channel on the chip"`

	Interval          time.Duration `short:"i" long:"interval" default:"5s" description:"Sampling interval"`
	MaxSpeedTimeCycle int           `long:"max-speed-time-cycle" default:"32" description:"Holding cycles tolerated before forcing maximum speed"`
	LagTimeCycle      int           `long:"lag-time-cycle" default:"8" description:"Non-rising cycles tolerated before the held duty cycle decays"`

	StopTemperature  float64 `long:"stop-temperature" default:"35" description:"Temperature below which the fan may stop (°C)"`
	StartTemperature float64 `long:"start-temperature" default:"40" description:"Temperature above which the fan starts (°C)"`
	HighTemperature  float64 `long:"high-temperature" default:"70" description:"Temperature at which the fan reaches maximum duty (°C)"`
	MinDutyCycle     float64 `long:"min-duty-cycle" default:"0.5" description:"Duty cycle at the start temperature (fraction)"`
	MaxDutyCycle     float64 `long:"max-duty-cycle" default:"0.9" description:"Duty cycle at the high temperature (fraction)"`
	PWMFrequency     uint    `long:"pwm-frequency" default:"10000" description:"PWM frequency (Hz)"`

	Broker    string        `long:"broker" description:"MQTT broker address (empty to disable)"`
	Heartbeat time.Duration `long:"heartbeat" default:"15m" description:"Heartbeat interval (0 to disable)"`
	HTTPAddr  string        `long:"http" default:":8080" description:"HTTP status address (empty to disable)"`
	TachPin   int           `long:"tach-pin" default:"-1" description:"BCM pin number of the fan tachometer (-1 to disable)"`

	PrintTemp bool `long:"print-temp" no-ini:"true" description:"Print current temperature and exit"`
	Verbose   bool `short:"v" long:"verbose" description:"Log every sampling tick"`
}

func main() {
	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		if flags.WroteHelp(err) {
			fmt.Println(err)
			return
		}
		log.Fatalf("fatal: %v", err)
	}

	if err := run(opts); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// parseOptions parses the command line, then the config file named by
// --config (if any), then the command line again so that flags given on
// the command line win over file values.
func parseOptions(args []string) (*options, error) {
	opts := &options{}
	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if opts.ConfigFile != "" {
		ini := flags.NewIniParser(parser)
		if err := ini.ParseFile(opts.ConfigFile); err != nil {
			return nil, fmt.Errorf("config file %s: %w", opts.ConfigFile, err)
		}
		if _, err := parser.ParseArgs(args); err != nil {
			return nil, err
		}
	}

	return opts, nil
}

func controlConfig(opts *options) *control.Config {
	return &control.Config{
		StopTemperature:   opts.StopTemperature,
		StartTemperature:  opts.StartTemperature,
		HighTemperature:   opts.HighTemperature,
		MinDutyCycle:      opts.MinDutyCycle,
		MaxDutyCycle:      opts.MaxDutyCycle,
		LagTimeCycle:      opts.LagTimeCycle,
		MaxSpeedTimeCycle: opts.MaxSpeedTimeCycle,
	}
}

func run(opts *options) error {
	ctrl, err := control.New(controlConfig(opts))
	if err != nil {
		return err
	}

	reader, err := sensor.NewSysfsReader(opts.Watch)
	if err != nil {
		return fmt.Errorf("init sensor: %w", err)
	}
	defer reader.Close()

	if opts.PrintTemp {
		temp, err := reader.Read()
		if err != nil {
			return fmt.Errorf("read temperature: %w", err)
		}
		fmt.Printf("%.3f°C\n", temp)
		return nil
	}

	writer, err := pwm.NewSysfsWriter(opts.Execute, opts.Channel)
	if err != nil {
		return fmt.Errorf("init pwm: %w", err)
	}
	defer writer.Close()

	if err := writer.Configure(opts.PWMFrequency); err != nil {
		return fmt.Errorf("configure pwm: %w", err)
	}
	fan := pwm.NewFan(writer)

	var tachReader tach.Reader
	if opts.TachPin >= 0 {
		tachReader, err = tach.NewGPIOReader(opts.TachPin)
		if err != nil {
			return fmt.Errorf("init tachometer: %w", err)
		}
		defer tachReader.Close()
	}

	// MQTT is optional; runLoop tolerates a nil publisher.
	var publisher mqtt.Publisher
	var mqttStatus mqtt.ConnectionStatus
	if opts.Broker != "" {
		real := mqtt.NewRealPublisher(opts.Broker)
		defer real.Close()
		publisher = real
		mqttStatus = real
	}

	tracker := status.NewTracker(time.Now(), status.Config{
		IntervalMs:     opts.Interval.Milliseconds(),
		LagCycles:      opts.LagTimeCycle,
		MaxSpeedCycles: opts.MaxSpeedTimeCycle,
		HeartbeatMs:    opts.Heartbeat.Milliseconds(),
		Curve:          ctrl.Curve().String(),
		PWMFrequencyHz: opts.PWMFrequency,
		Broker:         opts.Broker,
		HTTPAddr:       opts.HTTPAddr,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Startup kick: spin the fan at the curve value for the current
	// temperature. On a cool machine the lag/decay path stops it again
	// within a few cycles; this proves the fan works on every boot.
	prev := control.Output{Mode: control.ModeOff}
	if temp, err := reader.Read(); err != nil {
		log.Printf("sensor read error at startup: %v", err)
		tracker.CountSensorError()
	} else {
		prev = ctrl.Prime(temp)
		if _, err := fan.Apply(prev.Duty); err != nil {
			log.Printf("fan start error at startup: %v", err)
			tracker.CountActuatorError()
		}
		tracker.Update(temp, prev)
		log.Printf("startup kick: temp=%.2f°C duty=%.0f%%", temp, prev.Duty*100)
	}

	if publisher != nil {
		snap := tracker.Snapshot()
		startupEvent := mqtt.SystemEvent{
			Timestamp:  snap.Now,
			Event:      "STARTUP",
			Retained:   true,
			RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
		}
		if err := publisher.PublishSystem(startupEvent); err != nil {
			log.Printf("failed to publish startup event: %v", err)
		} else {
			log.Printf("published startup event")
		}
	}

	if opts.HTTPAddr != "" {
		srv := web.New(opts.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", opts.HTTPAddr)
	}

	log.Printf("started: watch=%s execute=%s/pwm%d interval=%v curve=%s",
		opts.Watch, opts.Execute, opts.Channel, opts.Interval, ctrl.Curve())

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGUSR1, syscall.SIGUSR2)

	return runLoop(ctrl, reader, fan, publisher, mqttStatus, tracker, tachReader,
		prev, opts.Heartbeat, opts.Verbose, time.Now, ticker.C, sigCh)
}

func runLoop(ctrl *control.Controller, reader sensor.Reader, fan *pwm.Fan,
	publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker,
	tachReader tach.Reader, prev control.Output, heartbeat time.Duration, verbose bool,
	now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {

	// Remaining ticks of an operator-forced max speed burst (SIGUSR2).
	boostTicks := 0

	for {
		select {
		case s := <-sig:
			switch s {
			case syscall.SIGUSR1:
				snap := tracker.Snapshot()
				log.Printf("status: mode=%s temp=%.2f°C duty=%.0f%% starts=%d stops=%d force_max=%d",
					snap.Mode, snap.Temperature, snap.Duty*100,
					snap.Counts.Starts, snap.Counts.Stops, snap.Counts.ForceMax)
				continue
			case syscall.SIGUSR2:
				boostTicks = ctrl.Config().MaxSpeedTimeCycle
				log.Printf("received SIGUSR2, forcing maximum speed for %d cycles", boostTicks)
				continue
			}

			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}

			if _, err := fan.Apply(0); err != nil {
				log.Printf("fan stop error at shutdown: %v", err)
			}

			if publisher != nil {
				event := mqtt.SystemEvent{
					Timestamp: now(),
					Event:     "SHUTDOWN",
					Reason:    signalName,
					Retained:  true,
				}
				if mqttStatus != nil {
					tracker.SetMQTTConnected(mqttStatus.IsConnected())
				}
				snap := tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
				if err := publisher.PublishSystem(event); err != nil {
					log.Printf("failed to publish shutdown event: %v", err)
				} else {
					log.Printf("published shutdown event")
				}
			}
			return nil

		case <-tick:
			t := now()

			if boostTicks > 0 {
				boostTicks--
				out := control.Output{Mode: control.ModeForceMax, Duty: ctrl.Config().MaxDutyCycle}
				if _, err := fan.Apply(out.Duty); err != nil {
					log.Printf("fan apply error: %v", err)
					tracker.CountActuatorError()
				}
				// Keep the last real reading in the status; before the
				// first sample there is no temperature to report.
				if snap := tracker.Snapshot(); snap.HasSample {
					tracker.Update(snap.Temperature, out)
				}
				prev = out
				continue
			}

			temp, err := reader.Read()
			if err != nil {
				log.Printf("sensor read error: %v", err)
				tracker.CountSensorError()
				continue
			}

			out := ctrl.Step(temp)

			if changed, err := fan.Apply(out.Duty); err != nil {
				log.Printf("fan apply error: %v", err)
				tracker.CountActuatorError()
			} else if changed && verbose {
				if out.Running() {
					log.Printf("fan started at %.0f%%", out.Duty*100)
				} else {
					log.Printf("fan stopped")
				}
			}

			for _, event := range control.Events(prev, out, temp, t) {
				log.Printf("event: %s (temp=%.2f°C duty=%.0f%% mode=%s)",
					event.Type, event.Temperature, event.Duty*100, event.Mode)
				tracker.CountEvent(event.Type)
				if publisher != nil {
					if err := publisher.Publish(event); err != nil {
						log.Printf("publish error: %v", err)
						// Don't crash on publish failure
					}
				}
			}
			prev = out

			tracker.Update(temp, out)
			if tachReader != nil {
				if rpm, err := tachReader.RPM(); err != nil {
					log.Printf("tachometer error: %v", err)
				} else {
					tracker.SetRPM(rpm)
				}
			}
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}

			if verbose {
				log.Printf("tick: temp=%.2f°C mode=%s duty=%.0f%%", temp, out.Mode, out.Duty*100)
			}

			if tracker.CheckHeartbeat(t, heartbeat) {
				snap := tracker.Snapshot()
				log.Printf("heartbeat: uptime=%v starts=%d stops=%d force_max=%d",
					snap.Uptime().Truncate(time.Second),
					snap.Counts.Starts, snap.Counts.Stops, snap.Counts.ForceMax)

				if publisher != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						tracker.SetNetwork(net)
						snap = tracker.Snapshot()
					}
					hbEvent := mqtt.SystemEvent{
						Timestamp:  t,
						Event:      "HEARTBEAT",
						RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
					}
					if err := publisher.PublishSystem(hbEvent); err != nil {
						log.Printf("heartbeat publish error: %v", err)
					}
				}
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
