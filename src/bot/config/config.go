package config

import (
	"log"
	"os"

	"github.com/commonhall/agora/src/shared/data"
	"gorm.io/gorm"
)

type Config struct {
	Token           string
	GuildID         string
	ModeratorRoleID string
	MySQLDSN        string
	RedisURL        string
}

func Load(db *gorm.DB) Config {
	// Load settings from database
	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	// Get values from database with env fallbacks
	discordToken := data.GetSetting("discord_token")
	if discordToken == "" {
		discordToken = os.Getenv("DISCORD_TOKEN")
	}

	guildID := data.GetSetting("guild_id")
	if guildID == "" {
		guildID = os.Getenv("GUILD_ID")
	}

	moderatorRoleID := data.GetSetting("moderator_role_id")
	if moderatorRoleID == "" {
		moderatorRoleID = os.Getenv("MODERATOR_ROLE_ID")
	}

	return Config{
		Token:           discordToken,
		GuildID:         guildID,
		ModeratorRoleID: moderatorRoleID,
		MySQLDSN:        getenv("MYSQL_DSN", "agora:agora@tcp(127.0.0.1:3306)/agora"),
		RedisURL:        getenv("REDIS_URL", "redis://127.0.0.1:6379/0"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
