package appointment

// Events returns a copy of the recorded event log.
func (r *InMemoryRepository) Events() []EventLog {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]EventLog(nil), r.events...)
}
