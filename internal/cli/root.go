// Package cli wires the engine, drivers, and TUIs into the thermalarm
// command.
package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luki/thermalarm/internal/config"
	"github.com/luki/thermalarm/internal/engine"
	"github.com/luki/thermalarm/internal/logging"
	"github.com/luki/thermalarm/internal/monitor"
	"github.com/luki/thermalarm/internal/notify"
	"github.com/luki/thermalarm/internal/record"
	"github.com/luki/thermalarm/internal/sensor"
	"github.com/luki/thermalarm/internal/speech"
)

const version = "0.2.0"

var (
	cfgFile    string
	flagDriver string
	flagKey    string
)

var rootCmd = &cobra.Command{
	Use:   "thermalarm",
	Short: "Temperature target monitor with voice and push alerts",
	Long: `Thermalarm watches a temperature sensor until it reaches a target
you set, then raises a popup, speaks a confirmation, and optionally
pushes a notification via ntfy. Every session is recorded and can be
browsed later with "thermalarm history".`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMonitor()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = version
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		fmt.Sprintf("config file (default %s)", config.ConfigFile()))
	rootCmd.PersistentFlags().StringVar(&flagDriver, "driver", "",
		"temperature source: hwmon or sim")
	rootCmd.PersistentFlags().StringVar(&flagKey, "key", "",
		"hwmon sensor key (default: auto-select)")
	_ = viper.BindPFlag("sensor.driver", rootCmd.PersistentFlags().Lookup("driver"))
	_ = viper.BindPFlag("sensor.key", rootCmd.PersistentFlags().Lookup("key"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(config.ConfigDir())
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("THERMALARM")
	viper.AutomaticEnv()

	config.SetDefaults()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}
}

func runMonitor() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.Nop()
	if cfg.Logging.Enabled {
		l, err := logging.NewLogger(cfg.Logging.Dir, cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		log = l
		defer log.Close()
	}

	provider := config.NewProvider(cfg)
	provider.Watch(func(err error) {
		log.Error("config reload rejected", "error", err)
	})

	driver, sensorName, err := openDriver(cfg)
	if err != nil {
		return err
	}
	log.Info("sensor selected", "driver", cfg.Sensor.Driver, "sensor", sensorName)

	speaker := speech.New(cfg.Voice.Command, log)
	notifier := notify.New(cfg.Ntfy, log)

	var recorder engine.Recorder
	if cfg.Recording.Enabled {
		store, err := record.NewStore(cfg.Recording.Dir)
		if err != nil {
			return fmt.Errorf("open runs dir: %w", err)
		}
		recorder = storeRecorder{store: store}
	}

	relay := monitor.NewRelay()
	eng := engine.New(engine.Options{
		Driver:     driver,
		Provider:   provider,
		SensorName: sensorName,
		Presenter:  relay,
		Speaker:    speaker,
		Notifier:   notifier,
		Recorder:   recorder,
		Log:        log,
	})

	p := tea.NewProgram(
		monitor.New(eng, sensorName),
		tea.WithAltScreen(),
	)
	relay.Attach(p)

	_, runErr := p.Run()
	eng.StopSession()
	driver.Disconnect()
	return runErr
}

func openDriver(cfg *config.Config) (sensor.Driver, string, error) {
	switch cfg.Sensor.Driver {
	case "sim":
		return sensor.NewSimulated(), "sim", nil
	case "hwmon", "":
		h, err := sensor.NewHwmon(cfg.Sensor.Key)
		if err != nil {
			return nil, "", fmt.Errorf("open sensor: %w", err)
		}
		return h, h.Key(), nil
	default:
		return nil, "", fmt.Errorf("unknown sensor driver %q", cfg.Sensor.Driver)
	}
}

// storeRecorder adapts the run store to the engine's recorder contract.
type storeRecorder struct {
	store *record.Store
}

func (s storeRecorder) CreateRun(name string, target float64, direction string, started time.Time) (engine.RunRecorder, error) {
	return s.store.CreateRun(name, target, direction, started)
}
