package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/flumphworks/flumphbot/internal"
)

const (
	// Discord caps native polls at 10 answers of 55 characters each.
	maxPollOptions    = 10
	maxAnswerLength   = 55
	pollQuestion      = "When should we have our next D&D session?"
	defaultSessionLen = 4 * time.Hour
)

// PollManager posts scheduling polls and resolves their winners.
type PollManager struct {
	storage internal.Storage
	session *discordgo.Session
}

func NewPollManager(storage internal.Storage, session *discordgo.Session) *PollManager {
	return &PollManager{
		storage: storage,
		session: session,
	}
}

// CreateSchedulingPoll posts a native Discord poll built from the available
// slots and records it in storage. Away events, if any, are listed above the
// poll for context. Returns nil when there are no slots to offer.
func (m *PollManager) CreateSchedulingPoll(
	ctx context.Context,
	channelID string,
	slots []internal.AvailabilitySlot,
	durationHours int,
	awayEvents []*internal.CalendarEvent,
) (*discordgo.Message, error) {
	if len(slots) == 0 {
		return nil, nil
	}
	if len(slots) > maxPollOptions {
		slots = slots[:maxPollOptions]
	}

	answers := make([]discordgo.PollAnswer, len(slots))
	for i, slot := range slots {
		answers[i] = discordgo.PollAnswer{
			Media: &discordgo.PollMedia{Text: answerLabel(slot)},
		}
	}

	msg := &discordgo.MessageSend{
		Content: awayContext(awayEvents),
		Poll: &discordgo.Poll{
			Question:         discordgo.PollMedia{Text: pollQuestion},
			Answers:          answers,
			AllowMultiselect: false,
			Duration:         durationHours,
		},
	}

	message, err := m.session.ChannelMessageSendComplex(channelID, msg)
	if err != nil {
		return nil, fmt.Errorf("poll: posting: %w", err)
	}

	now := time.Now().UTC()
	record := &internal.PollRecord{
		ID:        uuid.NewString(),
		MessageID: message.ID,
		ChannelID: channelID,
		CreatedAt: now,
		ClosesAt:  now.Add(time.Duration(durationHours) * time.Hour),
	}
	options := make([]*internal.PollOption, len(slots))
	for i, slot := range slots {
		options[i] = &internal.PollOption{
			PollID: record.ID,
			Date:   slot.Date,
		}
	}

	if err := m.storage.CreatePoll(ctx, record, options); err != nil {
		return nil, fmt.Errorf("poll: recording: %w", err)
	}
	return message, nil
}

// CloseAndGetWinner records final vote counts, marks the poll closed and
// returns the winning date. A poll with no votes closes without a winner.
func (m *PollManager) CloseAndGetWinner(
	ctx context.Context,
	record *internal.PollRecord,
	message *discordgo.Message,
) (*internal.Date, error) {
	if message.Poll == nil {
		return nil, fmt.Errorf("poll: message %s has no poll", message.ID)
	}

	options, err := m.storage.PollOptions(ctx, record.ID)
	if err != nil {
		return nil, err
	}

	// Discord assigns answer IDs in posting order, so answers and stored
	// options line up by index.
	var (
		maxVotes int
		winner   *internal.Date
	)
	for i, answer := range message.Poll.Answers {
		if i >= len(options) {
			break
		}
		votes := answerVotes(message.Poll.Results, answer.AnswerID)
		if err := m.storage.UpdateOptionVotes(ctx, record.ID, options[i].Date, votes); err != nil {
			return nil, err
		}
		if votes > maxVotes {
			maxVotes = votes
			winner = &options[i].Date
		}
	}

	record.Closed = true
	record.WinningDate = winner
	if err := m.storage.UpdatePoll(ctx, record); err != nil {
		return nil, err
	}
	return winner, nil
}

// NewDndEvent builds the session event for the winning date. A bare date gets
// the default evening start.
func NewDndEvent(start time.Time, title string, duration time.Duration, description string) *internal.CalendarEvent {
	if start.Hour() == 0 && start.Minute() == 0 {
		start = time.Date(start.Year(), start.Month(), start.Day(), 18, 0, 0, 0, start.Location())
	}
	if title == "" {
		title = "D&D Session"
	}
	if duration <= 0 {
		duration = defaultSessionLen
	}
	if description == "" {
		description = "D&D session scheduled via FlumphBot"
	}

	return &internal.CalendarEvent{
		Summary:     title,
		Description: description,
		StartsAt:    start,
		EndsAt:      start.Add(duration),
		Status:      internal.StatusBusy,
	}
}

func answerLabel(slot internal.AvailabilitySlot) string {
	label := slot.DisplayDate()
	if slot.StartsAt != nil {
		label += " (" + slot.DisplayTime() + ")"
	}
	if len(label) > maxAnswerLength {
		label = label[:maxAnswerLength]
	}
	return label
}

func awayContext(awayEvents []*internal.CalendarEvent) string {
	if len(awayEvents) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Heads up, some players are away:\n")
	for _, ev := range awayEvents {
		fmt.Fprintf(&sb, "- %s: %s - %s\n",
			ev.Summary,
			ev.StartsAt.Format("January 2"),
			ev.EndsAt.Format("January 2"),
		)
	}
	return sb.String()
}

func answerVotes(results *discordgo.PollResults, answerID int) int {
	if results == nil {
		return 0
	}
	for _, count := range results.AnswerCounts {
		if count.ID == answerID {
			return count.Count
		}
	}
	return 0
}
