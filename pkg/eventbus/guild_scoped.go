package eventbus

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
)

// PublishWithGuildScope publishes msg on {baseTopic}.{guildID}.
//
// Example:
//   - baseTopic: "tournament.create.succeeded.v1"
//   - guildID: "123456789"
//   - result: "tournament.create.succeeded.v1.123456789"
//
// Consumers subscribe with "tournament.create.succeeded.v1.*" for every guild or with the
// full subject for one guild.
func PublishWithGuildScope(pub message.Publisher, baseTopic string, guildID string, msg *message.Message) error {
	topic, err := GuildScopedTopic(baseTopic, guildID)
	if err != nil {
		return err
	}
	return pub.Publish(topic, msg)
}

// GuildScopedTopic formats a topic with the guild id suffix.
func GuildScopedTopic(baseTopic string, guildID string) (string, error) {
	if guildID == "" {
		return "", fmt.Errorf("guildID cannot be empty for guild-scoped topic %s", baseTopic)
	}
	return fmt.Sprintf("%s.%s", baseTopic, guildID), nil
}
