package bot

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NiklasKy/QuingDiscordBot/command"
	"github.com/NiklasKy/QuingDiscordBot/config"
	"github.com/NiklasKy/QuingDiscordBot/db"
	schedulehandler "github.com/NiklasKy/QuingDiscordBot/handler/schedule"
	"github.com/NiklasKy/QuingDiscordBot/vision"
	"github.com/NiklasKy/QuingDiscordBot/workflow"

	"github.com/bwmarrin/discordgo"
)

var dg *discordgo.Session

// Start wires the workflow together and runs the bot until interrupted.
func Start() {
	err := config.LoadConfig()
	if err != nil {
		log.Printf("Error loading config: %v", err)
		return
	}

	if config.Cfg.Token == "" {
		log.Printf("Warning: Token is empty!")
	}

	db.InitDB(config.Cfg.Database.Path)

	dg, err = discordgo.New("Bot " + config.Cfg.Token)
	if err != nil {
		log.Printf("Error creating Discord session: %v", err)
		return
	}

	extractor := vision.New(
		config.Cfg.OpenAI.APIKey,
		config.Cfg.OpenAI.Model,
		time.Duration(config.Cfg.OpenAI.TimeoutSeconds)*time.Second,
	)

	// The registry is the only shared workflow state; it is constructed
	// here once and injected, never reached through a global.
	registry := workflow.NewRegistry()
	machine := workflow.NewMachine(
		registry,
		extractor,
		schedulehandler.NewMessenger(dg),
		db.Recorder{},
		schedulehandler.SettingsFromConfig(),
	)

	handlers := schedulehandler.New(machine)
	schedulehandler.RegisterHandlers(handlers)
	registerEventHandlers(dg, handlers)

	err = dg.Open()
	if err != nil {
		log.Printf("Error opening connection: %v", err)
		return
	}

	for _, guildID := range config.Cfg.Commands.Allowguilds {
		for _, cmd := range command.AllCommands {
			_, err := dg.ApplicationCommandCreate(dg.State.User.ID, guildID, cmd)
			if err != nil {
				log.Fatalf("Cannot create '%v' command: %v", cmd.Name, err)
			}
		}
	}

	log.Printf("Bot is now running. Press CTRL-C to exit.")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	dg.Close()
}

// GetSession returns the current Discord session.
func GetSession() *discordgo.Session {
	return dg
}
