package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/kikoune/server/internal/app"
)

type configVar[T any] struct {
	envKey       string
	flagKey      string
	defaultValue T
}

var (
	host = configVar[string]{
		envKey:       "SERVER_HOST",
		flagKey:      "host",
		defaultValue: "0.0.0.0",
	}
	port = configVar[int]{
		envKey:       "SERVER_PORT",
		flagKey:      "port",
		defaultValue: 1104,
	}
	logLevel = configVar[string]{
		envKey:       "SERVER_LOG_LEVEL",
		flagKey:      "log-level",
		defaultValue: "INFO",
	}
	redisHost = configVar[string]{
		envKey:       "REDIS_HOST",
		flagKey:      "redis-host",
		defaultValue: "localhost",
	}
	redisPort = configVar[int]{
		envKey:       "REDIS_PORT",
		flagKey:      "redis-port",
		defaultValue: 6379,
	}
	redisPassword = configVar[string]{
		envKey:       "REDIS_PASSWORD",
		flagKey:      "redis-password",
		defaultValue: "",
	}
	discordClientId = configVar[string]{
		envKey:       "DISCORD_CLIENT_ID",
		flagKey:      "discord-client-id",
		defaultValue: "",
	}
	discordClientSecret = configVar[string]{
		envKey:       "DISCORD_CLIENT_SECRET",
		flagKey:      "discord-client-secret",
		defaultValue: "",
	}
)

func loadAppConfig() *app.AppConfig {
	pflag.String(host.flagKey, host.defaultValue, "Server host")
	pflag.Int(port.flagKey, port.defaultValue, "Server port")
	pflag.String(logLevel.flagKey, logLevel.defaultValue, "Logging level")
	pflag.String(redisHost.flagKey, redisHost.defaultValue, "Redis host")
	pflag.Int(redisPort.flagKey, redisPort.defaultValue, "Redis port")
	pflag.String(redisPassword.flagKey, redisPassword.defaultValue, "Redis password")
	pflag.String(discordClientId.flagKey, discordClientId.defaultValue, "Discord application client id")
	pflag.String(discordClientSecret.flagKey, discordClientSecret.defaultValue, "Discord application client secret")
	pflag.Parse()

	viper.BindPFlags(pflag.CommandLine)

	viper.BindEnv(host.flagKey, host.envKey)
	viper.BindEnv(port.flagKey, port.envKey)
	viper.BindEnv(logLevel.flagKey, logLevel.envKey)
	viper.BindEnv(redisHost.flagKey, redisHost.envKey)
	viper.BindEnv(redisPort.flagKey, redisPort.envKey)
	viper.BindEnv(redisPassword.flagKey, redisPassword.envKey)
	viper.BindEnv(discordClientId.flagKey, discordClientId.envKey)
	viper.BindEnv(discordClientSecret.flagKey, discordClientSecret.envKey)

	viper.SetDefault(host.flagKey, host.defaultValue)
	viper.SetDefault(port.flagKey, port.defaultValue)
	viper.SetDefault(logLevel.flagKey, logLevel.defaultValue)
	viper.SetDefault(redisHost.flagKey, redisHost.defaultValue)
	viper.SetDefault(redisPort.flagKey, redisPort.defaultValue)
	viper.SetDefault(redisPassword.flagKey, redisPassword.defaultValue)
	viper.SetDefault(discordClientId.flagKey, discordClientId.defaultValue)
	viper.SetDefault(discordClientSecret.flagKey, discordClientSecret.defaultValue)

	return &app.AppConfig{
		Host:                viper.GetString(host.flagKey),
		Port:                viper.GetInt(port.flagKey),
		LogLevel:            viper.GetString(logLevel.flagKey),
		RedisHost:           viper.GetString(redisHost.flagKey),
		RedisPort:           viper.GetInt(redisPort.flagKey),
		RedisPassword:       viper.GetString(redisPassword.flagKey),
		DiscordClientId:     viper.GetString(discordClientId.flagKey),
		DiscordClientSecret: viper.GetString(discordClientSecret.flagKey),
	}
}

func main() {
	ctx := context.Background()

	appConfig := loadAppConfig()
	if err := appConfig.Validate(); err != nil {
		log.Fatal(err)
	}

	jsonConfig, _ := json.MarshalIndent(appConfig, "", "  ")
	fmt.Printf("starting app with config: %s\n", jsonConfig)

	log.Fatal(app.Run(ctx, appConfig))
}
