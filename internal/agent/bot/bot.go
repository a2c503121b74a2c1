// Package bot is the public face of the engine: one Bot per conversation,
// fed one line at a time.
package bot

import (
	"context"
	"math/rand/v2"

	"github.com/papashirogane/chatbot/internal/agent/graph"
	"github.com/papashirogane/chatbot/internal/agent/graph/nodes"
	"github.com/papashirogane/chatbot/internal/agent/graph/parsers"
	"github.com/papashirogane/chatbot/internal/agent/model"
	"github.com/papashirogane/chatbot/internal/agent/pool"
	"github.com/papashirogane/chatbot/internal/agent/rules"
	errx "github.com/papashirogane/chatbot/internal/core/error"
	logx "github.com/papashirogane/chatbot/pkg/logger"
)

type options struct {
	book *rules.Book
	rng  *rand.Rand
	seed *uint64
}

// Option configures New.
type Option func(*options)

// WithRuleBook replaces the embedded rule book.
func WithRuleBook(b *rules.Book) Option {
	return func(o *options) { o.book = b }
}

// WithSeed makes every draw of the bot reproducible.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = &seed }
}

// WithRand sets the random source directly. It takes precedence over WithSeed.
func WithRand(r *rand.Rand) Option {
	return func(o *options) { o.rng = r }
}

// NewRand returns the source WithSeed uses for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Bot holds everything one conversation owns: compiled rules, response pools
// and session memory. A Bot is not safe for concurrent use.
type Bot struct {
	name    string
	cascade *rules.Cascade
	pools   *pool.Set
	session *model.Session
	runner  graph.Runner

	turn      *model.Turn
	nameAck   string
	reply     string
	hasReply  bool
	submitted bool
}

// New creates a bot called name with an empty history, no user name and
// every pool unused.
func New(name string, opts ...Option) (*Bot, error) {
	if name == "" {
		return nil, errx.Invalid("bot name is empty")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	book := o.book
	if book == nil {
		var err error
		if book, err = rules.Default(); err != nil {
			return nil, err
		}
	}
	rng := o.rng
	if rng == nil {
		if o.seed != nil {
			rng = NewRand(*o.seed)
		} else {
			rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
		}
	}

	cascade, err := rules.Compile(book)
	if err != nil {
		return nil, err
	}
	pools, err := pool.NewSet(cascade.Pools(), rng)
	if err != nil {
		return nil, err
	}
	runner, err := graph.BuildCascadeGraph(context.Background(), &nodes.Deps{
		Cascade: cascade,
		Pools:   pools,
		BotName: name,
	})
	if err != nil {
		return nil, err
	}

	return &Bot{
		name:    name,
		cascade: cascade,
		pools:   pools,
		session: model.NewSession(),
		runner:  runner,
	}, nil
}

// Name returns the bot's own name.
func (b *Bot) Name() string {
	return b.name
}

// UserName returns the name the user gave, or model.DefaultUserName.
func (b *Bot) UserName() string {
	return b.session.UserName
}

// History returns every line submitted so far, normalised, oldest first.
func (b *Bot) History() []string {
	return b.session.History()
}

// Submit records a line for the next Reply. A name given in the line is bound
// at once and acknowledged instead of running the cascade.
func (b *Bot) Submit(line string) {
	in := parsers.Normalize(line)
	repeats := b.session.CountRepeats(in.Raw)
	b.session.Record(in.Raw)

	b.turn = &model.Turn{Input: in, Repeats: repeats}
	b.nameAck = ""
	b.hasReply = false
	b.submitted = true

	if name, ok := b.cascade.CaptureName(in); ok {
		b.session.UserName = name
		b.nameAck = b.cascade.NameAck(name)
		logx.Debug().Str("user_name", name).Msg("User name captured")
	}
}

// Reply answers the last submitted line. Calling it again before the next
// Submit returns the same reply; calling it before any Submit answers an
// empty line.
func (b *Bot) Reply() string {
	return b.ReplyContext(context.Background())
}

// ReplyContext is Reply with a caller-supplied context for the cascade graph.
func (b *Bot) ReplyContext(ctx context.Context) string {
	if b.hasReply {
		return b.reply
	}
	if !b.submitted {
		b.turn = &model.Turn{Input: parsers.Normalize("")}
	}

	switch {
	case b.nameAck != "":
		b.reply = nodes.Capitalize(b.nameAck)
	default:
		b.reply = b.run(ctx)
	}
	b.hasReply = true
	return b.reply
}

func (b *Bot) run(ctx context.Context) string {
	t := *b.turn
	t.UserName = b.session.UserName
	reply, err := b.runner.Invoke(ctx, &t)
	if err == nil && reply != "" {
		return reply
	}
	logx.Error().Err(err).Str("raw", t.Input.Raw).Msg("Cascade failed, using fallback")
	return nodes.Capitalize(b.pools.Draw(b.cascade.Fallback().Pool))
}
