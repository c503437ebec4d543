package speech

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/swaram/internal/plugin"
)

// Command speaks through an external plugin executable.
type Command struct {
	plugin   *plugin.Plugin
	executor *plugin.Executor
}

// NewCommand resolves ref, a plugin name or executable path, through mgr.
func NewCommand(mgr *plugin.Manager, ref string, timeout time.Duration) (*Command, error) {
	p, err := mgr.Resolve(ref)
	if err != nil {
		return nil, fmt.Errorf("speech: resolve plugin %q: %w", ref, err)
	}
	if !p.Manifest.Supports(plugin.ActionSpeak) {
		return nil, fmt.Errorf("speech: plugin %q does not support %q", p.Manifest.Name, plugin.ActionSpeak)
	}
	return &Command{plugin: p, executor: plugin.NewExecutor(timeout)}, nil
}

// Synthesize implements Synthesizer.
func (c *Command) Synthesize(ctx context.Context, text, lang string) (Audio, error) {
	if text == "" {
		return Audio{}, ErrEmptyText
	}
	resp, err := c.executor.Execute(ctx, c.plugin, &plugin.Request{
		Action:   plugin.ActionSpeak,
		Text:     text,
		Language: lang,
	})
	if err != nil {
		return Audio{}, fmt.Errorf("speech: %s: %w", c.plugin.Manifest.Name, err)
	}
	if !resp.Success {
		return Audio{}, fmt.Errorf("speech: %s: %s", c.plugin.Manifest.Name, resp.Error)
	}
	if len(resp.Audio) == 0 {
		return Audio{}, errors.New("speech: plugin returned no audio")
	}
	format := resp.Format
	if format == "" {
		format = FormatWAV
	}
	return Audio{Data: resp.Audio, Format: format, Language: lang}, nil
}

// Name implements Synthesizer.
func (c *Command) Name() string { return "command:" + c.plugin.Manifest.Name }
