package qualify

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/turfline/leadchat/internal/models"
)

// InputKind distinguishes the discrete user actions the flow reacts to.
type InputKind string

const (
	InputText   InputKind = "text"   // free-text submission
	InputChoice InputKind = "choice" // forced-choice button
	InputSkip   InputKind = "skip"   // skip the optional feedback step
)

type Input struct {
	Kind  InputKind
	Value string
}

// FeedbackSubmission is emitted once when a rating (and optional comment)
// is finalized.
type FeedbackSubmission struct {
	Rating int
	Text   string
}

// Result describes what a single Advance call did. Replies were already
// appended to the session transcript unless Rejected is set.
type Result struct {
	Replies   []string
	Mutated   bool // session changed, a save is due
	Rejected  bool // input ignored, session untouched, Replies[0] is the re-ask
	Completed bool // entered the complete stage: flush the lead, schedule feedback
	Feedback  *FeedbackSubmission
}

// Choice options per forced-choice stage. The label is echoed into the
// transcript as the user's message; the value lands in the customer record.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

var (
	StartQuoteOption = Option{Value: "get-quote", Label: "Get a free quote"}

	PropertyTypeOptions = []Option{
		{Value: "residential", Label: "Residential home"},
		{Value: "commercial", Label: "Commercial property"},
		{Value: "hoa", Label: "HOA / community"},
	}
	TimelineOptions = []Option{
		{Value: "asap", Label: "As soon as possible"},
		{Value: "this-week", Label: "This week"},
		{Value: "this-month", Label: "This month"},
		{Value: "just-pricing", Label: "Just looking for pricing"},
	}
	ContactMethodOptions = []Option{
		{Value: "text", Label: "Text message"},
		{Value: "call", Label: "Phone call"},
		{Value: "email", Label: "Email"},
	}
)

const (
	promptGreeting       = "Hi! I'm the Turfline assistant. Ask me anything about our lawn services, or tap below to get a free quote."
	promptPropertyType   = "Great — what kind of property are we looking at?"
	promptLocation       = "Got it. Whereabouts is the property? An address or neighborhood works."
	promptServiceDetails = "Thanks! What services are you interested in? Mowing, cleanup, mulch, fertilizing — whatever you need."
	promptTimeline       = "Perfect. When would you like to get started?"
	promptContactMethod  = "Almost done. How would you prefer we reach out?"
	promptContactInfo    = "Last step — what's your name and the best email or phone number for your quote?"
	promptFeedback       = "One more thing — how was chatting with us? Rate us 1 to 5."
	promptFeedbackText   = "Thanks! Anything we could do better? (Feel free to skip.)"
	promptFeedbackDone   = "Thanks for the feedback — talk soon!"

	replyNeedNameFresh = "Could I get your name so we know who the quote is for?"
	replyNeedNameKnown = "Thanks — I've got your contact details. What name should we put on the quote?"
)

// Greeting returns the opening assistant message for a fresh session.
func Greeting() string { return promptGreeting }

// FeedbackPrompt returns the assistant message shown when the flow
// auto-advances from complete to feedback.
func FeedbackPrompt() string { return promptFeedback }

func optionLabel(opts []Option, value string) (string, bool) {
	for _, o := range opts {
		if o.Value == value {
			return o.Label, true
		}
	}
	return "", false
}

// StageOptions returns the forced-choice options the client should render for
// the given stage, or nil for free-text stages.
func StageOptions(stage models.Stage) []Option {
	switch stage {
	case models.StageIdle:
		return []Option{StartQuoteOption}
	case models.StagePropertyType:
		return PropertyTypeOptions
	case models.StageTimeline:
		return TimelineOptions
	case models.StageContactMethod:
		return ContactMethodOptions
	default:
		return nil
	}
}

// Advance runs one step of the qualification flow. Transitions are strictly
// forward; only contact-info may loop, and only on validation failure.
// Free-form chat (idle small talk, follow-ups after complete) is not handled
// here; callers route those to the chat service.
func Advance(s *models.Session, in Input) Result {
	switch s.Stage {
	case models.StageIdle:
		return advanceIdle(s, in)
	case models.StagePropertyType:
		return advanceChoice(s, in, PropertyTypeOptions, models.StageLocation, promptLocation, func(c *models.Customer, v string) { c.PropertyType = v })
	case models.StageLocation:
		return advanceText(s, in, models.StageServiceDetails, promptServiceDetails, func(c *models.Customer, v string) { c.Address = v })
	case models.StageServiceDetails:
		return advanceText(s, in, models.StageTimeline, promptTimeline, func(c *models.Customer, v string) { c.ServiceInterest = v })
	case models.StageTimeline:
		return advanceChoice(s, in, TimelineOptions, models.StageContactMethod, promptContactMethod, func(c *models.Customer, v string) { c.Timeline = v })
	case models.StageContactMethod:
		return advanceChoice(s, in, ContactMethodOptions, models.StageContactInfo, promptContactInfo, func(c *models.Customer, v string) { c.PreferredContact = v })
	case models.StageContactInfo:
		return advanceContactInfo(s, in)
	case models.StageFeedback:
		return advanceFeedback(s, in)
	default:
		return Result{Rejected: true}
	}
}

func advanceIdle(s *models.Session, in Input) Result {
	if in.Kind != InputChoice || in.Value != StartQuoteOption.Value {
		return Result{Rejected: true}
	}
	s.AppendUser(StartQuoteOption.Label)
	s.AppendAssistant(promptPropertyType)
	s.Stage = models.StagePropertyType
	return Result{Replies: []string{promptPropertyType}, Mutated: true}
}

// advanceChoice handles a single forced-choice step: echo the chosen label,
// store the value, advance exactly one stage. Never loops.
func advanceChoice(s *models.Session, in Input, opts []Option, next models.Stage, prompt string, set func(*models.Customer, string)) Result {
	if in.Kind != InputChoice {
		return Result{Rejected: true, Replies: []string{"Please pick one of the options."}}
	}
	label, ok := optionLabel(opts, in.Value)
	if !ok {
		return Result{Rejected: true, Replies: []string{"Please pick one of the options."}}
	}
	s.AppendUser(label)
	set(&s.Customer, in.Value)
	s.AppendAssistant(prompt)
	s.Stage = next
	return Result{Replies: []string{prompt}, Mutated: true}
}

// advanceText handles a single free-text capture: any non-empty input is
// accepted, stored, and advances exactly one stage. Never loops.
func advanceText(s *models.Session, in Input, next models.Stage, prompt string, set func(*models.Customer, string)) Result {
	text := strings.TrimSpace(in.Value)
	if in.Kind != InputText || text == "" {
		return Result{Rejected: true, Replies: []string{"Sorry, I didn't catch that — could you type it out?"}}
	}
	s.AppendUser(text)
	set(&s.Customer, text)
	s.AppendAssistant(prompt)
	s.Stage = next
	return Result{Replies: []string{prompt}, Mutated: true}
}

// advanceContactInfo parses the submission into the customer record and
// validates it. This is the only stage with a self-loop: missing name or
// missing email/phone re-prompts conversationally without leaving the stage.
func advanceContactInfo(s *models.Session, in Input) Result {
	text := strings.TrimSpace(in.Value)
	if in.Kind != InputText || text == "" {
		return Result{Rejected: true, Replies: []string{promptContactInfo}}
	}

	s.AppendUser(text)
	s.Customer.Merge(ParseContact(text))

	hasName := len([]rune(strings.TrimSpace(s.Customer.Name))) >= 2
	hasReach := s.Customer.Email != "" || s.Customer.Phone != ""

	switch {
	case !hasName:
		reply := replyNeedNameFresh
		if hasReach {
			reply = replyNeedNameKnown
		}
		s.AppendAssistant(reply)
		return Result{Replies: []string{reply}, Mutated: true}
	case !hasReach:
		reply := fmt.Sprintf("Thanks %s! What's the best email or phone number to reach you?", s.Customer.Name)
		s.AppendAssistant(reply)
		return Result{Replies: []string{reply}, Mutated: true}
	}

	reply := fmt.Sprintf("You're all set, %s — our team will reach out shortly with your quote.", s.Customer.Name)
	s.AppendAssistant(reply)
	s.Stage = models.StageComplete
	return Result{Replies: []string{reply}, Mutated: true, Completed: true}
}

func advanceFeedback(s *models.Session, in Input) Result {
	switch in.Kind {
	case InputChoice:
		rating, err := strconv.Atoi(in.Value)
		if err != nil || rating < 1 || rating > 5 {
			return Result{Rejected: true, Replies: []string{promptFeedback}}
		}
		s.PendingRating = rating
		s.AppendUser(fmt.Sprintf("%d/5", rating))
		s.AppendAssistant(promptFeedbackText)
		return Result{Replies: []string{promptFeedbackText}, Mutated: true}

	case InputText:
		if s.PendingRating == 0 {
			// commentary is only solicited once a rating is chosen
			return Result{Rejected: true, Replies: []string{promptFeedback}}
		}
		text := strings.TrimSpace(in.Value)
		if text != "" {
			s.AppendUser(text)
		}
		s.AppendAssistant(promptFeedbackDone)
		s.Stage = models.StageFeedbackSubmitted
		fb := &FeedbackSubmission{Rating: s.PendingRating, Text: text}
		s.PendingRating = 0
		return Result{Replies: []string{promptFeedbackDone}, Mutated: true, Feedback: fb}

	case InputSkip:
		s.AppendAssistant(promptFeedbackDone)
		s.Stage = models.StageFeedbackSubmitted
		var fb *FeedbackSubmission
		if s.PendingRating > 0 {
			fb = &FeedbackSubmission{Rating: s.PendingRating}
			s.PendingRating = 0
		}
		return Result{Replies: []string{promptFeedbackDone}, Mutated: true, Feedback: fb}
	}
	return Result{Rejected: true}
}

// FreeForm reports whether user text at the session's current stage belongs
// to the open-ended chat rather than the structured flow.
func FreeForm(stage models.Stage) bool {
	switch stage {
	case models.StageIdle, models.StageComplete, models.StageFeedbackSubmitted:
		return true
	default:
		return false
	}
}
