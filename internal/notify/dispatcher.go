package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/devSereneMINDS/Backend-Serene-MINDS/internal/messaging/aisensy"
	"github.com/devSereneMINDS/Backend-Serene-MINDS/pkg/logging"
)

// Media is an optional single attachment on a campaign message.
type Media struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// WhatsAppMessage names a pre-approved campaign template and the positional
// parameters substituted into it.
type WhatsAppMessage struct {
	CampaignName   string
	Destination    string
	TemplateParams []string
	Media          *Media
}

var (
	// ErrMissingDestination is returned when the message has no phone number.
	ErrMissingDestination = errors.New("notify: missing destination phone")

	// ErrDisabled is returned when WhatsApp delivery is switched off.
	ErrDisabled = errors.New("notify: whatsapp delivery disabled")
)

type campaignGateway interface {
	SendCampaign(ctx context.Context, req aisensy.CampaignRequest) (*aisensy.CampaignResponse, error)
}

// Dispatcher sends WhatsApp campaign messages through the AiSensy gateway.
//
// Delivery is auxiliary to every flow that uses it: callers are expected to
// log the returned error and carry on, never to fail their own response
// because of it. Returning the error (rather than swallowing it here) keeps
// the ignored-failure path visible at each call site.
type Dispatcher struct {
	gateway  campaignGateway
	sender   string
	enabled  bool
	logger   *logging.Logger
	observer func(campaign, status string)
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	Gateway    campaignGateway
	SenderName string
	Enabled    bool
	Logger     *logging.Logger
	// Observer, when set, receives (campaign, "ok"|"error") per send attempt.
	Observer func(campaign, status string)
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	if cfg.Logger == nil {
		cfg.Logger = logging.Default()
	}
	if cfg.SenderName == "" {
		cfg.SenderName = "Serene MINDS"
	}
	return &Dispatcher{
		gateway:  cfg.Gateway,
		sender:   cfg.SenderName,
		enabled:  cfg.Enabled,
		logger:   cfg.Logger,
		observer: cfg.Observer,
	}
}

// Send delivers one campaign message. All failure modes (missing destination,
// disabled delivery, gateway rejection, transport error) come back as a plain
// error for the caller to acknowledge.
func (d *Dispatcher) Send(ctx context.Context, msg WhatsAppMessage) error {
	if err := d.send(ctx, msg); err != nil {
		d.observe(msg.CampaignName, "error")
		return err
	}
	d.observe(msg.CampaignName, "ok")
	return nil
}

func (d *Dispatcher) send(ctx context.Context, msg WhatsAppMessage) error {
	if !d.enabled || d.gateway == nil {
		return ErrDisabled
	}
	if msg.Destination == "" {
		return ErrMissingDestination
	}
	req := aisensy.CampaignRequest{
		CampaignName:   msg.CampaignName,
		Destination:    msg.Destination,
		UserName:       d.sender,
		TemplateParams: msg.TemplateParams,
	}
	if msg.Media != nil {
		req.Media = &aisensy.Media{URL: msg.Media.URL, Filename: msg.Media.Filename}
	}
	if _, err := d.gateway.SendCampaign(ctx, req); err != nil {
		return fmt.Errorf("notify: campaign %q to %s: %w", msg.CampaignName, msg.Destination, err)
	}
	d.logger.Info("whatsapp campaign sent", "campaign", msg.CampaignName, "destination", msg.Destination)
	return nil
}

func (d *Dispatcher) observe(campaign, status string) {
	if d.observer != nil {
		d.observer(campaign, status)
	}
}
