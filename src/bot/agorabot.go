package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/bwmarrin/discordgo"
	"github.com/commonhall/agora/src/bot/components/ballot"
	"github.com/commonhall/agora/src/bot/components/classify"
	"github.com/commonhall/agora/src/bot/components/discord"
	"github.com/commonhall/agora/src/bot/components/lifecycle"
	"github.com/commonhall/agora/src/bot/config"
	"github.com/commonhall/agora/src/shared/data"
	"github.com/commonhall/agora/src/shared/types"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// cmdForceAdvance is the moderator command, posted as a reply to a debate
// message, that sends the candidate to a vote without waiting for support.
const cmdForceAdvance = "!advance"

type AgoraBot struct {
	session         *discordgo.Session
	db              *gorm.DB
	rdb             *redis.Client
	engine          *lifecycle.Engine
	classifier      *classify.Classifier
	voteChannels    map[string]bool
	moderatorRoleID string
}

func NewAgoraBot(cfg config.Config, db *gorm.DB, rdb *redis.Client) (*AgoraBot, error) {
	var proposalTypes []types.ProposalType
	if err := db.Find(&proposalTypes).Error; err != nil {
		return nil, err
	}
	if len(proposalTypes) == 0 {
		log.Printf("Warning: no proposal types configured; the bot will treat every message as ordinary chat")
	}
	for _, t := range proposalTypes {
		log.Printf("Loaded proposal type: %s (debate: %s, vote: %s, threshold: %d, duration: %dm)",
			t.Name, t.DebateChannelID, t.VoteChannelID, t.SupportThreshold, t.VoteDurationMinutes)
	}

	classifier, err := classify.New(proposalTypes)
	if err != nil {
		return nil, err
	}

	typesByName := make(map[string]*types.ProposalType, len(proposalTypes))
	voteChannels := make(map[string]bool, len(proposalTypes))
	for i := range proposalTypes {
		typesByName[proposalTypes[i].Name] = &proposalTypes[i]
		voteChannels[proposalTypes[i].VoteChannelID] = true
	}

	dg, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, err
	}

	messenger := discord.NewMessenger(discord.MessengerConfig{
		Session:         dg,
		GuildID:         cfg.GuildID,
		ModeratorRoleID: cfg.ModeratorRoleID,
	})

	engine := lifecycle.NewEngine(lifecycle.Config{
		Store:      data.NewProposalStore(db),
		Messenger:  messenger,
		Classifier: classifier,
		Types:      typesByName,
		OnTransition: func(messageID, from, to string) {
			if rdb == nil {
				return
			}
			if err := data.PublishTransition(context.Background(), rdb, messageID, from, to); err != nil {
				log.Printf("Failed to publish transition for %s: %v", messageID, err)
			}
		},
	})

	bot := &AgoraBot{
		session:         dg,
		db:              db,
		rdb:             rdb,
		engine:          engine,
		classifier:      classifier,
		voteChannels:    voteChannels,
		moderatorRoleID: cfg.ModeratorRoleID,
	}

	dg.AddHandler(bot.handleReady)
	dg.AddHandler(bot.handleReactionAdd)
	dg.AddHandler(bot.handleReactionRemove)
	dg.AddHandler(bot.handleMessageCreate)

	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent |
		discordgo.IntentsGuildMessageReactions

	return bot, nil
}

func (b *AgoraBot) Start() error {
	return b.session.Open()
}

func (b *AgoraBot) Stop() {
	b.engine.StopScheduler()
	b.session.Close()
}

func (b *AgoraBot) handleReady(s *discordgo.Session, event *discordgo.Ready) {
	log.Printf("Discord bot logged in as %s", event.User.Username)
	b.engine.StartScheduler()
}

// Reaction events feed two independent pipelines: support tracking on
// debate channels and vote tracking on vote channels. Each runs in its own
// goroutine with its own error boundary, so a failure in one never affects
// the other.
func (b *AgoraBot) handleReactionAdd(s *discordgo.Session, r *discordgo.MessageReactionAdd) {
	if r.UserID == s.State.User.ID {
		return
	}
	go b.runSupportPipeline(s, r.MessageReaction)
	go b.runVotePipeline(r.MessageReaction)
}

func (b *AgoraBot) handleReactionRemove(s *discordgo.Session, r *discordgo.MessageReactionRemove) {
	if r.UserID == s.State.User.ID {
		return
	}
	// Support counts only ever advance a candidate, so removals matter only
	// to the vote pipeline.
	go b.runVotePipeline(r.MessageReaction)
}

func (b *AgoraBot) runSupportPipeline(s *discordgo.Session, r *discordgo.MessageReaction) {
	if r.Emoji.Name != ballot.EmojiSupport || !b.classifier.HasChannel(r.ChannelID) {
		return
	}

	msg, err := s.ChannelMessage(r.ChannelID, r.MessageID)
	if err != nil {
		log.Printf("Support pipeline: fetch message %s: %v", r.MessageID, err)
		return
	}
	if msg.Author == nil || msg.Author.Bot {
		return
	}

	rawSupport := 0
	for _, reaction := range msg.Reactions {
		if reaction.Emoji.Name == ballot.EmojiSupport {
			rawSupport = reaction.Count
			break
		}
	}

	if err := b.engine.HandleSupportSignal(r.ChannelID, r.MessageID, msg.Author.ID, msg.Content, rawSupport); err != nil {
		log.Printf("Support pipeline: %v", err)
	}
}

func (b *AgoraBot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if !strings.HasPrefix(strings.TrimSpace(m.Content), cmdForceAdvance) {
		return
	}
	go b.runForceAdvance(s, m)
}

func (b *AgoraBot) runForceAdvance(s *discordgo.Session, m *discordgo.MessageCreate) {
	if !b.classifier.HasChannel(m.ChannelID) {
		return
	}
	if !b.isModerator(m.Member) {
		return
	}
	if m.MessageReference == nil || m.MessageReference.MessageID == "" {
		if _, err := s.ChannelMessageSendReply(m.ChannelID,
			"Reply to the proposal you want to send to a vote.", m.Reference()); err != nil {
			log.Printf("Force advance: reply usage hint: %v", err)
		}
		return
	}

	target, err := s.ChannelMessage(m.ChannelID, m.MessageReference.MessageID)
	if err != nil {
		log.Printf("Force advance: fetch target %s: %v", m.MessageReference.MessageID, err)
		return
	}
	if target.Author == nil || target.Author.Bot {
		return
	}

	if err := b.engine.ForceAdvance(m.ChannelID, target.ID, target.Author.ID, target.Content); err != nil {
		log.Printf("Force advance: %v", err)
	}
}

func (b *AgoraBot) isModerator(member *discordgo.Member) bool {
	if member == nil {
		return false
	}
	for _, role := range member.Roles {
		if role == b.moderatorRoleID {
			return true
		}
	}
	return false
}

func (b *AgoraBot) runVotePipeline(r *discordgo.MessageReaction) {
	if r.Emoji.Name != ballot.EmojiYes && r.Emoji.Name != ballot.EmojiNo {
		return
	}
	if !b.voteChannels[r.ChannelID] {
		return
	}

	if err := b.engine.HandleVoteSignal(r.MessageID); err != nil {
		log.Printf("Vote pipeline: %v", err)
	}
}

func main() {
	mysqlDSN := os.Getenv("MYSQL_DSN")
	if mysqlDSN == "" {
		mysqlDSN = "agora:agora@tcp(127.0.0.1:3306)/agora"
	}

	db := data.MustMySQL(mysqlDSN)

	if err := db.AutoMigrate(&types.Setting{}, &types.ProposalType{}, &types.Proposal{}); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	cfg := config.Load(db)
	if cfg.Token == "" {
		log.Fatal("DISCORD_TOKEN not set in database or environment")
	}
	if cfg.GuildID == "" {
		log.Fatal("GUILD_ID not set in database or environment")
	}
	if cfg.ModeratorRoleID == "" {
		log.Fatal("MODERATOR_ROLE_ID not set in database or environment")
	}

	rdb := data.MustRedis(cfg.RedisURL)

	bot, err := NewAgoraBot(cfg, db, rdb)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	if err := bot.Start(); err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	log.Println("Agora bot is running. Press CTRL-C to exit.")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	bot.Stop()
	log.Println("Agora bot stopped gracefully")
}
