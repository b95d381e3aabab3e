package schedule

import (
	"github.com/NiklasKy/QuingDiscordBot/command"
	"github.com/NiklasKy/QuingDiscordBot/handler"
)

// RegisterHandlers registers all slash-command handlers for the schedule
// package.
func RegisterHandlers(h *Handlers) {
	handler.AddCommandHandler(command.ScheduleTestCommand.Name, h.ScheduleTest)
	handler.AddCommandHandler(command.ScheduleReloadCommand.Name, h.ScheduleReload)
	handler.AddCommandHandler(command.ScheduleFixTimeCommand.Name, h.ScheduleFixTime)
	handler.AddCommandHandler(command.ScheduleHistoryCommand.Name, h.ScheduleHistory)
}
