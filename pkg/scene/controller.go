package scene

import (
	"strconv"

	"github.com/matzehuels/accessmap/pkg/errors"
)

// Controller owns the filter state and applies it to a scene.
//
// The scene stays gray until the first input; every input after that
// recolors the whole scene from both current values.
type Controller struct {
	scene    *Scene
	th       Thresholds
	filtered bool
}

// NewController attaches a controller at [DefaultThresholds].
func NewController(s *Scene) *Controller {
	return &Controller{scene: s, th: DefaultThresholds}
}

// Scene returns the controlled scene.
func (c *Controller) Scene() *Scene { return c.scene }

// Thresholds returns the current filter state.
func (c *Controller) Thresholds() Thresholds { return c.th }

// Filtered reports whether any input has been applied yet.
func (c *Controller) Filtered() bool { return c.filtered }

// SetClinicMax moves the clinic slider.
func (c *Controller) SetClinicMax(v float64) {
	c.Set(Thresholds{ClinicMax: v, ProviderMax: c.th.ProviderMax})
}

// SetProviderMax moves the provider slider.
func (c *Controller) SetProviderMax(v float64) {
	c.Set(Thresholds{ClinicMax: c.th.ClinicMax, ProviderMax: v})
}

// Set applies both values and recolors.
func (c *Controller) Set(th Thresholds) {
	c.th = th
	c.filtered = true
	c.scene.Recolor(th)
}

// SetRaw parses both slider values and applies them. On error nothing
// changes.
func (c *Controller) SetRaw(clinicMax, providerMax string) error {
	cm, err := errors.ParseThreshold("clinicMax", clinicMax)
	if err != nil {
		return err
	}
	pm, err := errors.ParseThreshold("providerMax", providerMax)
	if err != nil {
		return err
	}
	c.Set(Thresholds{ClinicMax: cm, ProviderMax: pm})
	return nil
}

// Labels returns the live slider labels, e.g. "60%" and "72.5%".
func (c *Controller) Labels() (clinic, provider string) {
	return Label(c.th.ClinicMax), Label(c.th.ProviderMax)
}

// Label formats a slider value with the shortest exact decimal and a
// percent sign.
func Label(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64) + "%"
}
