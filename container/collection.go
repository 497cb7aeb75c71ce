package container

import (
	"fmt"

	"github.com/avlkit/ifile/axis"
	"github.com/avlkit/ifile/channel"
	"github.com/avlkit/ifile/errs"
	"github.com/avlkit/ifile/value"
)

// Collection is the read-only lookup contract shared by the channel and
// parameter collections: keyed access with a not-found error, ordered name
// iteration, and a length.
type Collection[T any] interface {
	// Get returns the view for name, or a not-found error.
	Get(name string) (T, error)
	// Names returns the member names in container insertion order.
	Names() []string
	// Len returns the number of members.
	Len() int
}

// ChannelCollection is the lookup collection over channels of one axis
// classification. Membership is recomputed on every access from the live
// container, so corrections and other mutations are always visible.
type ChannelCollection struct {
	container *Container
	kind      axis.Kind
}

var _ Collection[*channel.View] = (*ChannelCollection)(nil)

// Kind returns the axis classification this collection filters to.
func (cc *ChannelCollection) Kind() axis.Kind {
	return cc.kind
}

// Names returns the names of member channels in container insertion order.
func (cc *ChannelCollection) Names() []string {
	var names []string
	for _, name := range cc.container.root.Keys() {
		if cc.member(name) {
			names = append(names, name)
		}
	}

	return names
}

// Len returns the number of member channels.
func (cc *ChannelCollection) Len() int {
	return len(cc.Names())
}

// Has reports whether name is a member channel.
func (cc *ChannelCollection) Has(name string) bool {
	return cc.member(name)
}

// Get returns the view for the named channel.
//
// Returns:
//   - *channel.View: The channel view
//   - error: errs.ErrChannelNotFound when the name is not a member of this
//     classification
func (cc *ChannelCollection) Get(name string) (*channel.View, error) {
	if !cc.member(name) {
		return nil, fmt.Errorf("%w: %q in %s", errs.ErrChannelNotFound, name, cc.kind)
	}

	rec, _ := cc.container.blockRecord(name)

	return channel.NewView(name, channel.BlockFromRecord(rec), cc.container.test), nil
}

func (cc *ChannelCollection) member(name string) bool {
	rec, ok := cc.container.blockRecord(name)
	if !ok {
		return false
	}

	return channel.BlockFromRecord(rec).AxisKind() == cc.kind
}

// ParameterCollection is the lookup collection over the "parameters" record
// (or its "PAR" alias). No classification filter applies.
type ParameterCollection struct {
	container *Container
}

var _ Collection[*channel.ParameterView] = (*ParameterCollection)(nil)

// Names returns the parameter names in insertion order, nil when the
// container has no parameters record.
func (pc *ParameterCollection) Names() []string {
	rec, ok := pc.record()
	if !ok {
		return nil
	}

	return rec.Keys()
}

// Len returns the number of parameters.
func (pc *ParameterCollection) Len() int {
	rec, ok := pc.record()
	if !ok {
		return 0
	}

	return rec.Len()
}

// Has reports whether the named parameter exists.
func (pc *ParameterCollection) Has(name string) bool {
	rec, ok := pc.record()
	if !ok {
		return false
	}

	return rec.Has(name)
}

// Get returns the view for the named parameter.
//
// Returns:
//   - *channel.ParameterView: The parameter view
//   - error: errs.ErrParameterNotFound when the name is absent
func (pc *ParameterCollection) Get(name string) (*channel.ParameterView, error) {
	rec, ok := pc.record()
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrParameterNotFound, name)
	}
	v, ok := rec.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", errs.ErrParameterNotFound, name)
	}

	return channel.NewParameterView(name, v, pc.container.test), nil
}

func (pc *ParameterCollection) record() (*value.Record, bool) {
	if rec, ok := pc.container.recordAt(KeyParameters); ok {
		return rec, true
	}

	return pc.container.recordAt(KeyParametersAlias)
}
