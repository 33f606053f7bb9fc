package interpreter

// Batch is the result of validating a decoded list: the items kept and how many were dropped
type Batch[T any] struct {
	Items   []T
	Dropped int
}

// Empty reports whether the AI legitimately returned nothing
func (b Batch[T]) Empty() bool {
	return len(b.Items) == 0 && b.Dropped == 0
}

// Total returns the number of items before validation
func (b Batch[T]) Total() int {
	return len(b.Items) + b.Dropped
}

// ValidateItems keeps the items accepted by keep and counts the rest
func ValidateItems[T any](items []T, keep func(T) bool) Batch[T] {
	batch := Batch[T]{Items: make([]T, 0, len(items))}
	for _, item := range items {
		if keep(item) {
			batch.Items = append(batch.Items, item)
		} else {
			batch.Dropped++
		}
	}
	return batch
}

// Keep filters the batch with keep, adding the rejected items to Dropped
func (b Batch[T]) Keep(keep func(T) bool) Batch[T] {
	kept := ValidateItems(b.Items, keep)
	kept.Dropped += b.Dropped
	return kept
}

// RequireSome fails with a ValidationError when every item of a non-empty batch was dropped
func RequireSome[T any](feature string, batch Batch[T]) error {
	if len(batch.Items) == 0 && batch.Dropped > 0 {
		return &ValidationError{Feature: feature, Dropped: batch.Dropped}
	}
	return nil
}
