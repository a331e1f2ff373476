package discord

import (
	"context"

	"go.uber.org/zap"

	"pingrelay/internal/trigger"
)

// SettingsSource resolves an owner's configured Discord user id.
// Returns "" when the owner never configured one.
type SettingsSource interface {
	DiscordUserID(ctx context.Context, ownerID string) (string, error)
}

// Notifier delivers trigger messages as Discord DMs. It satisfies
// trigger.Deliverer: the destination ref is the owner's Discord user
// id, and Send makes exactly one attempt (DM channel open + one embed).
type Notifier struct {
	settings SettingsSource
	client   *Client
	log      *zap.Logger
}

func NewNotifier(settings SettingsSource, client *Client, log *zap.Logger) *Notifier {
	return &Notifier{settings: settings, client: client, log: log}
}

// ResolveDestination looks up the owner's Discord user id. An unset id
// is a caller configuration error, reported as
// trigger.ErrDestinationNotConfigured without touching the network.
func (n *Notifier) ResolveDestination(ctx context.Context, ownerID string) (string, error) {
	id, err := n.settings.DiscordUserID(ctx, ownerID)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", trigger.ErrDestinationNotConfigured
	}
	return id, nil
}

// Send opens the DM channel for the destination user and posts the
// message as a single embed. No retries at this level.
func (n *Notifier) Send(ctx context.Context, destination string, msg trigger.Message) error {
	channelID, err := n.client.CreateDM(ctx, destination)
	if err != nil {
		return err
	}

	embed := Embed{
		Title:       msg.Title,
		Description: msg.Description,
	}
	for _, f := range msg.Fields {
		embed.Fields = append(embed.Fields, EmbedField{Name: f.Name, Value: f.Value})
	}

	if err := n.client.SendEmbed(ctx, channelID, embed); err != nil {
		return err
	}

	n.log.Debug("delivered DM",
		zap.String("recipient", destination),
		zap.String("channel_id", channelID))
	return nil
}
