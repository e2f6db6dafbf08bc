package utils

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type LogLevel string

const (
	Info  LogLevel = "INFO"
	Warn  LogLevel = "WARN"
	Error LogLevel = "ERROR"
)

// InitLogger installs the process-wide slog logger.
func InitLogger(level, format string) *slog.Logger {
	return setLogger(os.Stderr, level, format)
}

func setLogger(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var h slog.Handler
	if strings.EqualFold(format, "json") {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(level)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func getColor(level LogLevel) int {
	switch level {
	case Info:
		return 3066993 // Green
	case Warn:
		return 15105570 // Orange
	case Error:
		return 15158332 // Red
	default:
		return 3447003 // Blue
	}
}

// truncate keeps embed field values under the platform's 1024 character limit.
func truncate(s string) string {
	if s == "" {
		return "-"
	}
	if len(s) > 1000 {
		return s[:1000] + "..."
	}
	return s
}

func logEmbed(level LogLevel, module, operation, extraInfo string) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: string(level) + " Log",
		Color: getColor(level),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Module", Value: truncate(module)},
			{Name: "Operation", Value: truncate(operation)},
			{Name: "Details", Value: truncate(extraInfo)},
		},
	}
}

func sendLog(s *discordgo.Session, channelID string, level LogLevel, module, operation, extraInfo string) {
	attrs := []any{"module", module, "op", operation, "info", extraInfo}
	switch level {
	case Error:
		slog.Error("report", attrs...)
	case Warn:
		slog.Warn("report", attrs...)
	default:
		slog.Info("report", attrs...)
	}
	if s == nil || channelID == "" {
		return
	}
	if _, err := s.ChannelMessageSendEmbed(channelID, logEmbed(level, module, operation, extraInfo)); err != nil {
		slog.Warn("failed to send log embed", "channel", channelID, "err", err)
	}
}

// LogInfo logs locally and mirrors the entry to the log channel when set.
func LogInfo(s *discordgo.Session, channelID, module, operation, extraInfo string) {
	sendLog(s, channelID, Info, module, operation, extraInfo)
}

func LogWarn(s *discordgo.Session, channelID, module, operation, extraInfo string) {
	sendLog(s, channelID, Warn, module, operation, extraInfo)
}

func LogError(s *discordgo.Session, channelID, module, operation string, err error) {
	sendLog(s, channelID, Error, module, operation, fmt.Sprint(err))
}
