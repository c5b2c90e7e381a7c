package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/mlcatalog-backend/internal/platform/contenthash"
	"github.com/yungbote/mlcatalog-backend/internal/platform/logger"
	"github.com/yungbote/mlcatalog-backend/internal/repos"
	"github.com/yungbote/mlcatalog-backend/internal/types"
)

// errDigestConflict aborts a createVersion transaction when the entity's
// current-digest pointer moved under us. It never escapes CreateVersion.
var errDigestConflict = errors.New("current digest moved during version append")

// minDigestPrefix is the shortest ref treated as a digest prefix.
const minDigestPrefix = 6

// VersionInfo is one entry of an entity's version history.
type VersionInfo struct {
	SequenceIndex int                    `json:"sequence_index"`
	Digest        string                 `json:"digest"`
	Message       string                 `json:"message,omitempty"`
	Tags          []string               `json:"tags"`
	CreatedBy     *uuid.UUID             `json:"created_by,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	Snapshot      map[string]interface{} `json:"snapshot,omitempty"`
}

// FieldDiff is a single differing field between two snapshots.
type FieldDiff struct {
	Field    string      `json:"field"`
	ValueInA interface{} `json:"value_in_a"`
	ValueInB interface{} `json:"value_in_b"`
}

type VersionHistory struct {
	EntityID      uuid.UUID      `json:"entity_id"`
	TotalVersions int64          `json:"total_versions"`
	Versions      []*VersionInfo `json:"versions"`
}

type VersionService interface {
	// CreateVersion snapshots the entity's current versioned fields. When the
	// content digest equals the entity's current digest this is a no-op that
	// returns the already-stored version (requested tags are still attached).
	CreateVersion(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, message string, tags []string, createdBy *uuid.UUID) (*types.EntityVersion, error)
	TagVersion(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, ref, tagName string) (*types.VersionTag, error)
	ResolveVersion(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, ref string) (*types.EntityVersion, error)
	// CheckoutVersion is a pure read of a historical snapshot; it never
	// mutates the entity's current-digest pointer.
	CheckoutVersion(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, ref string) (*VersionInfo, error)
	CompareVersions(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, refA, refB string) ([]FieldDiff, error)
	GetEntitiesByTag(ctx context.Context, tx *gorm.DB, tagName, kindFilter string) ([]*types.Entity, error)
	History(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, offset, limit int) (*VersionHistory, error)
}

type versionService struct {
	db          *gorm.DB
	log         *logger.Logger
	entityRepo  repos.EntityRepo
	versionRepo repos.VersionRepo
	maxRetries  int
}

func NewVersionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	entityRepo repos.EntityRepo,
	versionRepo repos.VersionRepo,
	maxRetries int,
) VersionService {
	if maxRetries < 1 {
		maxRetries = 3
	}
	return &versionService{
		db:          db,
		log:         baseLog.With("service", "VersionService"),
		entityRepo:  entityRepo,
		versionRepo: versionRepo,
		maxRetries:  maxRetries,
	}
}

func (s *versionService) CreateVersion(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, message string, tags []string, createdBy *uuid.UUID) (*types.EntityVersion, error) {
	// When the caller supplies a transaction the whole attempt happens inside
	// it and a conflict surfaces immediately; otherwise we own the
	// transaction and may retry a bounded number of times.
	if tx != nil {
		version, err := s.createVersionTx(ctx, tx, entityID, message, tags, createdBy)
		if errors.Is(err, errDigestConflict) {
			return nil, &types.ConcurrentModificationError{EntityID: entityID, Attempts: 1}
		}
		return version, err
	}

	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		var version *types.EntityVersion
		err := s.db.Transaction(func(innerTx *gorm.DB) error {
			var txErr error
			version, txErr = s.createVersionTx(ctx, innerTx, entityID, message, tags, createdBy)
			return txErr
		})
		if err == nil {
			return version, nil
		}
		if !errors.Is(err, errDigestConflict) {
			return nil, err
		}
		s.log.Debug("version append conflict, retrying", "entity_id", entityID, "attempt", attempt)
	}
	return nil, &types.ConcurrentModificationError{EntityID: entityID, Attempts: s.maxRetries}
}

// createVersionTx runs the read-compare-append sequence inside one
// transaction. The compare-and-swap on the entity's current digest is what
// serializes concurrent writers: the loser sees zero rows updated and aborts
// with errDigestConflict.
func (s *versionService) createVersionTx(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, message string, tags []string, createdBy *uuid.UUID) (*types.EntityVersion, error) {
	entity, err := s.entityRepo.GetByID(ctx, tx, entityID)
	if err != nil {
		return nil, err
	}
	if entity.Payload() == nil {
		return nil, &types.ValidationError{Field: "payload", Reason: "entity has no variant payload loaded"}
	}

	fields := entity.VersionedFields()
	digest, err := contenthash.Digest(fields)
	if err != nil {
		return nil, fmt.Errorf("hash versioned fields: %w", err)
	}

	if digest == entity.CurrentDigest {
		existing, err := s.versionRepo.GetByDigest(ctx, tx, entityID, digest)
		if err != nil {
			return nil, err
		}
		if err := s.attachTags(ctx, tx, entityID, digest, tags); err != nil {
			return nil, err
		}
		return existing, nil
	}

	// Content may revert to an earlier version's digest. Digests are unique
	// per entity, so instead of appending a duplicate row the current-digest
	// pointer moves back to the stored version.
	if existing, err := s.versionRepo.GetByDigest(ctx, tx, entityID, digest); err == nil {
		swapped, err := s.entityRepo.CompareAndSwapDigest(ctx, tx, entityID, entity.CurrentDigest, digest)
		if err != nil {
			return nil, err
		}
		if !swapped {
			return nil, errDigestConflict
		}
		if err := s.attachTags(ctx, tx, entityID, digest, tags); err != nil {
			return nil, err
		}
		return existing, nil
	} else if !types.IsNotFound(err) {
		return nil, err
	}

	snapshot, err := contenthash.Canonicalize(fields)
	if err != nil {
		return nil, fmt.Errorf("serialize snapshot: %w", err)
	}
	count, err := s.versionRepo.CountByEntity(ctx, tx, entityID)
	if err != nil {
		return nil, err
	}

	version := &types.EntityVersion{
		ID:            uuid.New(),
		EntityID:      entityID,
		SequenceIndex: int(count),
		Digest:        digest,
		Snapshot:      datatypes.JSON(snapshot),
		Message:       message,
		CreatedBy:     createdBy,
		CreatedAt:     time.Now().UTC(),
	}
	if _, err := s.versionRepo.Append(ctx, tx, version); err != nil {
		// A racing writer can commit its row first, in which case the unique
		// (entity_id, sequence_index) or (entity_id, digest) index rejects this
		// insert before the CAS ever runs. Same conflict, same retry.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errDigestConflict
		}
		return nil, err
	}

	swapped, err := s.entityRepo.CompareAndSwapDigest(ctx, tx, entityID, entity.CurrentDigest, digest)
	if err != nil {
		return nil, err
	}
	if !swapped {
		return nil, errDigestConflict
	}

	if err := s.attachTags(ctx, tx, entityID, digest, tags); err != nil {
		return nil, err
	}
	return version, nil
}

func (s *versionService) attachTags(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, digest string, tags []string) error {
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, err := s.versionRepo.UpsertTag(ctx, tx, entityID, digest, tag); err != nil {
			return fmt.Errorf("attach tag %q: %w", tag, err)
		}
	}
	return nil
}

func (s *versionService) TagVersion(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, ref, tagName string) (*types.VersionTag, error) {
	if tagName == "" {
		return nil, &types.ValidationError{Field: "tag_name", Reason: "tag name is required"}
	}
	version, err := s.ResolveVersion(ctx, tx, entityID, ref)
	if err != nil {
		return nil, err
	}
	return s.versionRepo.UpsertTag(ctx, tx, entityID, version.Digest, tagName)
}

// ResolveVersion resolves ref in this order: exact tag name, then full or
// prefix digest (hex only), then non-negative sequence index. A digest prefix
// matching more than one stored digest is an error, never a guess.
func (s *versionService) ResolveVersion(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, ref string) (*types.EntityVersion, error) {
	if ref == "" {
		return nil, &types.ValidationError{Field: "ref", Reason: "version reference is required"}
	}

	tag, err := s.versionRepo.GetTagByName(ctx, tx, entityID, ref)
	switch {
	case err == nil:
		return s.versionRepo.GetByDigest(ctx, tx, entityID, tag.Digest)
	case !types.IsNotFound(err):
		return nil, err
	}

	// Short all-digit refs like "3" would otherwise race between digest
	// prefix and sequence index; a digest prefix must carry at least
	// minDigestPrefix characters to count as one.
	if isHex(ref) && len(ref) >= minDigestPrefix && len(ref) <= 64 {
		matches, err := s.versionRepo.FindByDigestPrefix(ctx, tx, entityID, ref)
		if err != nil {
			return nil, err
		}
		switch len(matches) {
		case 1:
			return matches[0], nil
		case 0:
			// fall through to sequence-index resolution
		default:
			return nil, &types.AmbiguousReferenceError{Ref: ref, Matches: len(matches)}
		}
	}

	if index, convErr := strconv.Atoi(ref); convErr == nil && index >= 0 {
		return s.versionRepo.GetBySequence(ctx, tx, entityID, index)
	}

	return nil, &types.NotFoundError{Resource: "version", Ref: ref}
}

func (s *versionService) CheckoutVersion(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, ref string) (*VersionInfo, error) {
	version, err := s.ResolveVersion(ctx, tx, entityID, ref)
	if err != nil {
		return nil, err
	}
	tags, err := s.tagsForDigest(ctx, tx, entityID, version.Digest)
	if err != nil {
		return nil, err
	}
	snapshot, err := decodeSnapshot(version.Snapshot)
	if err != nil {
		return nil, err
	}
	return &VersionInfo{
		SequenceIndex: version.SequenceIndex,
		Digest:        version.Digest,
		Message:       version.Message,
		Tags:          tags,
		CreatedBy:     version.CreatedBy,
		CreatedAt:     version.CreatedAt,
		Snapshot:      snapshot,
	}, nil
}

func (s *versionService) CompareVersions(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, refA, refB string) ([]FieldDiff, error) {
	versionA, err := s.ResolveVersion(ctx, tx, entityID, refA)
	if err != nil {
		return nil, err
	}
	versionB, err := s.ResolveVersion(ctx, tx, entityID, refB)
	if err != nil {
		return nil, err
	}

	snapshotA, err := decodeSnapshot(versionA.Snapshot)
	if err != nil {
		return nil, err
	}
	snapshotB, err := decodeSnapshot(versionB.Snapshot)
	if err != nil {
		return nil, err
	}

	fieldSet := map[string]struct{}{}
	for k := range snapshotA {
		fieldSet[k] = struct{}{}
	}
	for k := range snapshotB {
		fieldSet[k] = struct{}{}
	}
	fields := make([]string, 0, len(fieldSet))
	for k := range fieldSet {
		fields = append(fields, k)
	}
	sort.Strings(fields)

	var diffs []FieldDiff
	for _, field := range fields {
		valueA := snapshotA[field]
		valueB := snapshotB[field]
		if !reflect.DeepEqual(valueA, valueB) {
			diffs = append(diffs, FieldDiff{Field: field, ValueInA: valueA, ValueInB: valueB})
		}
	}
	return diffs, nil
}

func (s *versionService) GetEntitiesByTag(ctx context.Context, tx *gorm.DB, tagName, kindFilter string) ([]*types.Entity, error) {
	if kindFilter != "" && !types.ValidKind(kindFilter) {
		return nil, &types.ValidationError{Field: "kind", Reason: fmt.Sprintf("unknown entity kind %q", kindFilter)}
	}
	ids, err := s.versionRepo.ListEntityIDsByTag(ctx, tx, tagName)
	if err != nil {
		return nil, err
	}
	// a gorm tx is not safe for concurrent use, so only fan out on the pool
	if tx != nil {
		entities := make([]*types.Entity, 0, len(ids))
		for _, id := range ids {
			entity, err := s.fetchTaggedEntity(ctx, tx, id, kindFilter)
			if err != nil {
				return nil, err
			}
			if entity != nil {
				entities = append(entities, entity)
			}
		}
		return entities, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	slots := make([]*types.Entity, len(ids))
	for i, id := range ids {
		i, id := i, id
		g.Go(func() error {
			entity, err := s.fetchTaggedEntity(gctx, nil, id, kindFilter)
			if err != nil {
				return err
			}
			slots[i] = entity
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	entities := make([]*types.Entity, 0, len(ids))
	for _, entity := range slots {
		if entity != nil {
			entities = append(entities, entity)
		}
	}
	return entities, nil
}

// fetchTaggedEntity returns nil (no error) when the tag row outlived its
// entity or the kind filter rejects it.
func (s *versionService) fetchTaggedEntity(ctx context.Context, tx *gorm.DB, id uuid.UUID, kindFilter string) (*types.Entity, error) {
	entity, err := s.entityRepo.GetByID(ctx, tx, id)
	if err != nil {
		if types.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if kindFilter != "" && entity.Kind != kindFilter {
		return nil, nil
	}
	return entity, nil
}

func (s *versionService) History(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, offset, limit int) (*VersionHistory, error) {
	if _, err := s.entityRepo.GetByID(ctx, tx, entityID); err != nil {
		return nil, err
	}
	total, err := s.versionRepo.CountByEntity(ctx, tx, entityID)
	if err != nil {
		return nil, err
	}
	versions, err := s.versionRepo.ListByEntity(ctx, tx, entityID, offset, limit)
	if err != nil {
		return nil, err
	}
	allTags, err := s.versionRepo.ListTagsByEntity(ctx, tx, entityID)
	if err != nil {
		return nil, err
	}
	tagsByDigest := map[string][]string{}
	for _, tag := range allTags {
		tagsByDigest[tag.Digest] = append(tagsByDigest[tag.Digest], tag.TagName)
	}

	infos := make([]*VersionInfo, 0, len(versions))
	for _, version := range versions {
		tags := tagsByDigest[version.Digest]
		if tags == nil {
			tags = []string{}
		}
		infos = append(infos, &VersionInfo{
			SequenceIndex: version.SequenceIndex,
			Digest:        version.Digest,
			Message:       version.Message,
			Tags:          tags,
			CreatedBy:     version.CreatedBy,
			CreatedAt:     version.CreatedAt,
		})
	}
	return &VersionHistory{EntityID: entityID, TotalVersions: total, Versions: infos}, nil
}

func (s *versionService) tagsForDigest(ctx context.Context, tx *gorm.DB, entityID uuid.UUID, digest string) ([]string, error) {
	allTags, err := s.versionRepo.ListTagsByEntity(ctx, tx, entityID)
	if err != nil {
		return nil, err
	}
	tags := []string{}
	for _, tag := range allTags {
		if tag.Digest == digest {
			tags = append(tags, tag.TagName)
		}
	}
	return tags, nil
}

func decodeSnapshot(raw datatypes.JSON) (map[string]interface{}, error) {
	var snapshot map[string]interface{}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return snapshot, nil
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		default:
			return false
		}
	}
	return true
}
