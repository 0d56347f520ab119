package cli

import (
	"fmt"
	"time"

	"github.com/jgehrcke/freenas-utils/internal/config"
)

// OptionalDuration records a duration flag and whether it was set.
type OptionalDuration struct {
	value time.Duration
	set   bool
}

func (o *OptionalDuration) Set(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	o.value = v
	o.set = true
	return nil
}

func (o *OptionalDuration) String() string {
	if !o.set {
		return ""
	}
	return o.value.String()
}

func (o *OptionalDuration) Value() (time.Duration, bool) {
	return o.value, o.set
}

// OptionalString records a string flag and whether it was set.
type OptionalString struct {
	value string
	set   bool
}

func (o *OptionalString) Set(s string) error {
	o.value = s
	o.set = true
	return nil
}

func (o *OptionalString) String() string {
	if !o.set {
		return ""
	}
	return o.value
}

func (o *OptionalString) Value() (string, bool) {
	return o.value, o.set
}

// OptionalPingerMode records a probe mode flag and whether it was set.
type OptionalPingerMode struct {
	value config.PingerMode
	set   bool
}

func (o *OptionalPingerMode) Set(s string) error {
	switch config.PingerMode(s) {
	case config.PingerExternal, config.PingerICMP, config.PingerAuto:
		o.value = config.PingerMode(s)
		o.set = true
		return nil
	default:
		return fmt.Errorf("invalid pinger mode: %q (valid values: external, icmp, auto)", s)
	}
}

func (o *OptionalPingerMode) String() string {
	if !o.set {
		return ""
	}
	return string(o.value)
}

func (o *OptionalPingerMode) Value() (config.PingerMode, bool) {
	return o.value, o.set
}
