package gekko

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"reflect"
	"slices"
	"sync"
)

type EntityId uint64
type archetypeId uint64
type archetypeKey []componentId
type componentId uint32
type row int
type set[T comparable] = map[T]struct{}

// Ecs stores entities in archetypes: one typed slice per component, one row
// per entity. Archetypes are visited in creation order and rows in insertion
// order, so iteration is deterministic.
type Ecs struct {
	archetypes     map[archetypeId]*archetype
	archetypeOrder []*archetype
	entityIndex    map[EntityId]archetypeId

	idGeneratorLock sync.Mutex
	entityIdCounter EntityId

	componentIdCounterLock sync.Mutex
	componentIdCounter     componentId
	componentTypeIdMap     map[reflect.Type]componentId
	componentIdTypeMap     map[componentId]reflect.Type
}

func MakeEcs() Ecs {
	return Ecs{
		archetypes:         make(map[archetypeId]*archetype),
		entityIndex:        make(map[EntityId]archetypeId),
		componentTypeIdMap: make(map[reflect.Type]componentId),
		componentIdTypeMap: make(map[componentId]reflect.Type),
	}
}

type archetype struct {
	id            archetypeId
	key           archetypeKey
	entities      []EntityId // row -> entity
	rows          map[EntityId]row
	componentData map[componentId]any // typed slices via reflection
}

func (arch *archetype) len() int { return len(arch.entities) }

func (ecs *Ecs) addEntity(components ...any) EntityId {
	entityId := ecs.nextEntityId()
	return ecs.insertEntity(entityId, components...)
}

func (ecs *Ecs) insertEntity(entityId EntityId, components ...any) EntityId {
	if _, exists := ecs.entityIndex[entityId]; exists {
		panic(fmt.Sprintf("entity %v already exists", entityId))
	}
	archId, arch := ecs.archetypeFromComponents(components...)

	r := ecs.archetypeAppendRow(arch, entityId)
	for _, component := range components {
		ecs.writeComponent(arch, r, component)
	}

	ecs.entityIndex[entityId] = archId
	return entityId
}

// removeEntity ignores unknown ids, so a double removal is harmless.
func (ecs *Ecs) removeEntity(entityId EntityId) {
	archId, ok := ecs.entityIndex[entityId]
	if !ok {
		return
	}
	ecs.archetypeDeleteRow(ecs.archetypes[archId], entityId)
	delete(ecs.entityIndex, entityId)
}

func (ecs *Ecs) hasEntity(entityId EntityId) bool {
	_, ok := ecs.entityIndex[entityId]
	return ok
}

func (ecs *Ecs) addComponents(entityId EntityId, components ...any) {
	srcArchId, ok := ecs.entityIndex[entityId]
	if !ok {
		return
	}
	srcArch := ecs.archetypes[srcArchId]

	dstKey := combineArchetypeKeys(srcArch.key, ecs.getArchetypeKey(components...))
	dstArchId, dstArch := ecs.getOrMakeArchetype(dstKey)
	if dstArchId == srcArchId {
		// Same shape; overwrite in place.
		r := srcArch.rows[entityId]
		for _, component := range components {
			ecs.writeComponent(srcArch, r, component)
		}
		return
	}

	dstRow := ecs.moveEntity(entityId, srcArch, dstArch)
	for _, component := range components {
		ecs.writeComponent(dstArch, dstRow, component)
	}
	ecs.entityIndex[entityId] = dstArchId
}

func (ecs *Ecs) removeComponents(entityId EntityId, components ...any) {
	srcArchId, ok := ecs.entityIndex[entityId]
	if !ok {
		return
	}
	srcArch := ecs.archetypes[srcArchId]

	removeSet := make(set[componentId])
	for _, c := range components {
		removeSet[ecs.getComponentId(componentType(c))] = struct{}{}
	}

	var dstKey archetypeKey
	for _, compId := range srcArch.key {
		if _, shouldRemove := removeSet[compId]; !shouldRemove {
			dstKey = append(dstKey, compId)
		}
	}

	dstArchId, dstArch := ecs.getOrMakeArchetype(dstKey)
	if dstArchId == srcArchId {
		return
	}
	ecs.moveEntity(entityId, srcArch, dstArch)
	ecs.entityIndex[entityId] = dstArchId
}

// moveEntity copies the components both archetypes share and drops the
// source row.
func (ecs *Ecs) moveEntity(entityId EntityId, srcArch, dstArch *archetype) row {
	srcRow := srcArch.rows[entityId]
	dstRow := ecs.archetypeAppendRow(dstArch, entityId)

	for _, compId := range srcArch.key {
		dstData, ok := dstArch.componentData[compId]
		if !ok {
			continue
		}
		srcValue := reflectSliceGet(srcArch.componentData[compId], int(srcRow))
		reflectSliceSet(dstData, int(dstRow), srcValue)
	}

	ecs.archetypeDeleteRow(srcArch, entityId)
	return dstRow
}

func (ecs *Ecs) writeComponent(dstArch *archetype, dstRow row, component any) {
	reflectValue := reflect.ValueOf(component)
	if reflectValue.Kind() == reflect.Pointer {
		reflectValue = reflectValue.Elem()
	}
	if reflectValue.Kind() != reflect.Struct {
		panic(fmt.Errorf("expected Component to be a struct or a pointer to a struct, got %s", reflectValue.Kind()))
	}

	compId := ecs.getComponentId(reflectValue.Type())
	reflectSliceSet(dstArch.componentData[compId], int(dstRow), reflectValue)
}

func (ecs *Ecs) archetypeFromComponents(components ...any) (archetypeId, *archetype) {
	return ecs.getOrMakeArchetype(ecs.getArchetypeKey(components...))
}

func (ecs *Ecs) getOrMakeArchetype(key archetypeKey) (archetypeId, *archetype) {
	id := getArchetypeId(key)

	if arch, ok := ecs.archetypes[id]; ok {
		return id, arch
	}

	arch := &archetype{
		id:            id,
		key:           key,
		rows:          make(map[EntityId]row),
		componentData: make(map[componentId]any),
	}
	for _, compId := range arch.key {
		arch.componentData[compId] = reflectSliceMake(ecs.getComponentType(compId))
	}

	ecs.archetypes[id] = arch
	ecs.archetypeOrder = append(ecs.archetypeOrder, arch)
	return id, arch
}

func (ecs *Ecs) archetypeAppendRow(arch *archetype, entityId EntityId) row {
	r := row(arch.len())
	arch.entities = append(arch.entities, entityId)
	arch.rows[entityId] = r
	for _, compId := range arch.key {
		arch.componentData[compId] = reflectSliceAppend(
			arch.componentData[compId],
			reflect.Zero(ecs.getComponentType(compId)),
		)
	}
	return r
}

// archetypeDeleteRow shifts later rows down by one to keep insertion order.
func (ecs *Ecs) archetypeDeleteRow(arch *archetype, entityId EntityId) {
	r, ok := arch.rows[entityId]
	if !ok {
		return
	}
	for _, compId := range arch.key {
		arch.componentData[compId] = reflectSliceDelete(arch.componentData[compId], int(r))
	}
	arch.entities = slices.Delete(arch.entities, int(r), int(r)+1)
	delete(arch.rows, entityId)
	for i := int(r); i < len(arch.entities); i++ {
		arch.rows[arch.entities[i]] = row(i)
	}
}

// An archetype's key is the sorted, deduplicated list of its component ids.
// The archetype id is an FNV hash of the key.
func (ecs *Ecs) getArchetypeKey(components ...any) archetypeKey {
	res := make(archetypeKey, 0, len(components))

	for _, component := range components {
		compType := componentType(component)
		if compType == nil || compType.Kind() != reflect.Struct {
			panic("component should be a struct")
		}

		res = append(res, ecs.getComponentId(compType))
	}

	return dedupAndSortArchetypeKey(res)
}

func combineArchetypeKeys(a archetypeKey, b archetypeKey) archetypeKey {
	combined := make(archetypeKey, 0, len(a)+len(b))
	combined = append(combined, a...)
	return dedupAndSortArchetypeKey(append(combined, b...))
}

func dedupAndSortArchetypeKey(key archetypeKey) archetypeKey {
	res := slices.Clone(key)
	slices.Sort(res)
	return slices.Compact(res)
}

func getArchetypeId(key archetypeKey) archetypeId {
	hash := fnv.New64a()
	b := make([]byte, 8)
	for _, compId := range key {
		binary.LittleEndian.PutUint64(b, uint64(compId))
		hash.Write(b)
	}
	return archetypeId(hash.Sum64())
}

func (ecs *Ecs) nextEntityId() EntityId {
	ecs.idGeneratorLock.Lock()
	defer ecs.idGeneratorLock.Unlock()

	id := ecs.entityIdCounter
	ecs.entityIdCounter += 1

	return id
}

func (ecs *Ecs) getComponentId(componentType reflect.Type) componentId {
	ecs.componentIdCounterLock.Lock()
	defer ecs.componentIdCounterLock.Unlock()

	if id, ok := ecs.componentTypeIdMap[componentType]; ok {
		return id
	}
	id := ecs.componentIdCounter
	ecs.componentIdCounter += 1

	ecs.componentTypeIdMap[componentType] = id
	ecs.componentIdTypeMap[id] = componentType

	return id
}

func (ecs *Ecs) getComponentType(compId componentId) reflect.Type {
	ecs.componentIdCounterLock.Lock()
	defer ecs.componentIdCounterLock.Unlock()

	if t, ok := ecs.componentIdTypeMap[compId]; ok {
		return t
	}
	panic("ComponentID not registered")
}
