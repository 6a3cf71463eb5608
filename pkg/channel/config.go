package channel

import "github.com/dtn-stack/bplib/pkg/bundle"

// Attributes returns a copy of the channel's current attribute set (spec
// §4.6 "config", get mode).
func (c *Channel) Attributes() bundle.Attributes {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attrs
}

// SetAttributes replaces the channel's attribute set (spec §4.6 "config",
// set mode) and rebuilds both bundle templates, since any attribute change
// invalidates a prebuilt header.
func (c *Channel) SetAttributes(attrs bundle.Attributes) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attrs = attrs
	c.builder.SetAttributes(attrs)

	dacsAttrs := attrs
	dacsAttrs.RequestCustody = false
	dacsAttrs.AdminRecord = true
	c.dacsBuilder.SetAttributes(dacsAttrs)
}

// Route returns the channel's current endpoint set.
func (c *Channel) Route() bundle.Route {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.route
}

// SetRoute replaces the channel's endpoint set and hands it to the data
// bundle builder; the DACS builder picks up the route on its next flush.
func (c *Channel) SetRoute(route bundle.Route) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.route = route
	c.builder.SetRoute(route)
}
