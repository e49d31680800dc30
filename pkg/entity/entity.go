// pkg/entity/entity.go
package entity

import (
	"github.com/EngoEngine/ecs"

	"github.com/opd-ai/go-spacerpg/pkg/physics"
)

// Entity is the common view of anything placed in the world: locations and
// vessels. Radar, selection and targeting work against this interface.
type Entity interface {
	ID() uint64
	GetTag() string
	GetName() string
	Position() physics.Vector2D
	OnRadar() bool
}

// BaseEntity contains the identity shared by all entities. The embedded
// ecs.BasicEntity gives every entity a process-unique ID for the ecs world.
type BaseEntity struct {
	ecs.BasicEntity
	Tag         string
	Name        string
	Description string
}

func newBaseEntity(tag, name, description string) BaseEntity {
	return BaseEntity{
		BasicEntity: ecs.NewBasic(),
		Tag:         tag,
		Name:        name,
		Description: description,
	}
}

// GetTag returns the entity's unique debug tag
func (e *BaseEntity) GetTag() string {
	return e.Tag
}

// GetName returns the display name
func (e *BaseEntity) GetName() string {
	return e.Name
}
