// File: cmd/spaceradio/root.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envPrefix = "SPACERADIO"

func newRootCommand() *cobra.Command {
	v := viper.New()
	cmd := &cobra.Command{
		Use:           "spaceradio",
		Short:         "Broadcast control changes as OSC over UDP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := loadConfigFile(v); err != nil {
				return err
			}
			return setupLogging(v.GetString("log.level"), v.GetString("log.format"))
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file (yaml, json or toml)")
	pf.String("log-level", "info", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "text", "log format: text or json")
	pf.String("address", defaultAddress, "OSC destination host")
	pf.Uint16("port", defaultPort, "OSC destination port")
	pf.String("local-addr", defaultLocalAddr, "local UDP bind address")
	pf.Int("controls", defaultControls, "number of controls")
	mustBind(v, "config", pf.Lookup("config"))
	mustBind(v, "log.level", pf.Lookup("log-level"))
	mustBind(v, "log.format", pf.Lookup("log-format"))
	mustBind(v, keyAddress, pf.Lookup("address"))
	mustBind(v, keyPort, pf.Lookup("port"))
	mustBind(v, keyLocalAddr, pf.Lookup("local-addr"))
	mustBind(v, keyControls, pf.Lookup("controls"))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(newEnvReplacer())
	v.AutomaticEnv()

	cmd.AddCommand(
		newRunCommand(v),
		newSendCommand(v),
		newListenCommand(v),
		newParamsCommand(v),
		newVersionCommand(),
	)
	return cmd
}

func newEnvReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_", "-", "_")
}

func mustBind(v *viper.Viper, key string, flag *pflag.Flag) {
	if err := v.BindPFlag(key, flag); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", key, err))
	}
}

func setupLogging(level, format string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logrus.SetLevel(lvl)
	switch format {
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	case "text", "":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unknown log format %q", format)
	}
	return nil
}

func loadConfigFile(v *viper.Viper) error {
	path := v.GetString("config")
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	logrus.WithFields(logrus.Fields{
		"function": "loadConfigFile",
		"path":     v.ConfigFileUsed(),
	}).Debug("Config file loaded")
	return nil
}
