package main

import (
	"github.com/NiklasKy/QuingDiscordBot/bot"
)

func main() {
	bot.Start()
}
