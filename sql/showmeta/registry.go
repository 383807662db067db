package showmeta

// DefaultRegistry builds the full SHOW-command registry, grounded on
// the column layouts enumerated in original_source/show_meta.c. Each
// entry states its result schema, argument arity, and whether it is
// restricted to the administrative principal.
func DefaultRegistry() Registry {
	r := Registry{}

	r[ShowVolumeHeader] = Metadata{
		Type:    ShowVolumeHeader,
		DBAOnly: true,
		Columns: []Column{
			{Name: "volume_id", Type: ColumnInt},
			{Name: "volume_name", Type: ColumnVarchar},
			{Name: "volume_type", Type: ColumnVarchar},
			{Name: "total_pages", Type: ColumnBigint},
			{Name: "free_pages", Type: ColumnBigint},
		},
		Args: []NamedArg{{Name: "volume_id", Type: ArgInt, Required: true}},
	}

	r[ShowActiveLogHeader] = Metadata{
		Type:    ShowActiveLogHeader,
		DBAOnly: true,
		Columns: []Column{
			{Name: "magic", Type: ColumnVarchar},
			{Name: "db_name", Type: ColumnVarchar},
			{Name: "log_page_size", Type: ColumnInt},
			{Name: "append_lsa", Type: ColumnVarchar},
			{Name: "checkpoint_lsa", Type: ColumnVarchar},
		},
	}

	r[ShowArchiveLogHeader] = Metadata{
		Type:    ShowArchiveLogHeader,
		DBAOnly: true,
		Columns: []Column{
			{Name: "archive_num", Type: ColumnInt},
			{Name: "first_page_id", Type: ColumnBigint},
			{Name: "last_page_id", Type: ColumnBigint},
		},
		Args: []NamedArg{{Name: "archive_num", Type: ArgInt, Required: true}},
	}

	r[ShowSlottedPageHeader] = Metadata{
		Type:    ShowSlottedPageHeader,
		DBAOnly: true,
		Columns: []Column{
			{Name: "num_slots", Type: ColumnInt},
			{Name: "num_records", Type: ColumnInt},
			{Name: "free_space", Type: ColumnInt},
		},
		Args: []NamedArg{{Name: "volume_id", Type: ArgInt, Required: true}, {Name: "page_id", Type: ArgInt, Required: true}},
	}

	r[ShowSlottedPageSlots] = Metadata{
		Type:    ShowSlottedPageSlots,
		DBAOnly: true,
		Columns: []Column{
			{Name: "slot_id", Type: ColumnInt},
			{Name: "record_type", Type: ColumnVarchar},
			{Name: "record_length", Type: ColumnInt},
			{Name: "offset", Type: ColumnInt},
		},
		Args:    []NamedArg{{Name: "volume_id", Type: ArgInt, Required: true}, {Name: "page_id", Type: ArgInt, Required: true}},
		OrderBy: []OrderBySpec{{Column: "slot_id"}},
	}

	r[ShowAccessStatus] = Metadata{
		Type:    ShowAccessStatus,
		DBAOnly: true,
		Columns: []Column{
			{Name: "user_name", Type: ColumnVarchar},
			{Name: "login_time", Type: ColumnTimestamp},
			{Name: "host", Type: ColumnVarchar},
			{Name: "program_name", Type: ColumnVarchar},
		},
	}

	r[ShowHeapHeader] = heapHeaderMeta(ShowHeapHeader, false)
	r[ShowAllHeapHeader] = heapHeaderMeta(ShowAllHeapHeader, true)
	r[ShowHeapCapacity] = heapCapacityMeta(ShowHeapCapacity, false)
	r[ShowAllHeapCapacity] = heapCapacityMeta(ShowAllHeapCapacity, true)
	r[ShowIndexHeader] = indexHeaderMeta(ShowIndexHeader, false)
	r[ShowAllIndexHeader] = indexHeaderMeta(ShowAllIndexHeader, true)
	r[ShowIndexCapacity] = indexCapacityMeta(ShowIndexCapacity, false)
	r[ShowAllIndexCapacity] = indexCapacityMeta(ShowAllIndexCapacity, true)

	r[ShowGlobalCriticalSection] = Metadata{
		Type:    ShowGlobalCriticalSection,
		DBAOnly: true,
		Columns: []Column{
			{Name: "name", Type: ColumnVarchar},
			{Name: "owner_tran_index", Type: ColumnInt},
			{Name: "waiters", Type: ColumnInt},
		},
	}

	r[ShowJobQueues] = Metadata{
		Type:    ShowJobQueues,
		DBAOnly: true,
		Columns: []Column{
			{Name: "queue_id", Type: ColumnInt},
			{Name: "num_jobs", Type: ColumnInt},
			{Name: "num_workers", Type: ColumnInt},
		},
	}

	r[ShowTimezones] = Metadata{
		Type: ShowTimezones,
		Columns: []Column{
			{Name: "zone_name", Type: ColumnVarchar},
			{Name: "gmt_offset", Type: ColumnVarchar},
		},
		OrderBy: []OrderBySpec{{Column: "zone_name"}},
	}

	r[ShowFullTimezones] = Metadata{
		Type: ShowFullTimezones,
		Columns: []Column{
			{Name: "zone_name", Type: ColumnVarchar},
			{Name: "gmt_offset", Type: ColumnVarchar},
			{Name: "dst_offset", Type: ColumnVarchar},
			{Name: "full_name", Type: ColumnVarchar},
		},
		OrderBy: []OrderBySpec{{Column: "zone_name"}},
	}

	r[ShowTransactionTables] = Metadata{
		Type:    ShowTransactionTables,
		DBAOnly: true,
		Columns: []Column{
			{Name: "tran_index", Type: ColumnInt},
			{Name: "tran_state", Type: ColumnVarchar},
			{Name: "user_name", Type: ColumnVarchar},
			{Name: "host", Type: ColumnVarchar},
			{Name: "program_name", Type: ColumnVarchar},
		},
		OrderBy: []OrderBySpec{{Column: "tran_index"}},
	}

	r[ShowThreads] = Metadata{
		Type:    ShowThreads,
		DBAOnly: true,
		Columns: []Column{
			{Name: "thread_index", Type: ColumnInt},
			{Name: "tid", Type: ColumnBigint},
			{Name: "status", Type: ColumnVarchar},
			{Name: "function_name", Type: ColumnVarchar},
		},
		OrderBy: []OrderBySpec{{Column: "thread_index"}},
	}

	return r
}

func heapHeaderMeta(t ShowType, all bool) Metadata {
	cols := []Column{
		{Name: "class_name", Type: ColumnVarchar},
		{Name: "num_pages", Type: ColumnBigint},
		{Name: "num_records", Type: ColumnBigint},
	}
	args := []NamedArg{{Name: "class_name", Type: ArgString, Required: !all}}
	return Metadata{Type: t, DBAOnly: true, Columns: cols, Args: args}
}

func heapCapacityMeta(t ShowType, all bool) Metadata {
	cols := []Column{
		{Name: "class_name", Type: ColumnVarchar},
		{Name: "num_recs", Type: ColumnBigint},
		{Name: "num_relocated_recs", Type: ColumnBigint},
		{Name: "avg_rec_len", Type: ColumnFloat},
		{Name: "free_space", Type: ColumnBigint},
	}
	args := []NamedArg{{Name: "class_name", Type: ArgString, Required: !all}}
	return Metadata{Type: t, DBAOnly: true, Columns: cols, Args: args}
}

func indexHeaderMeta(t ShowType, all bool) Metadata {
	cols := []Column{
		{Name: "class_name", Type: ColumnVarchar},
		{Name: "index_name", Type: ColumnVarchar},
		{Name: "num_keys", Type: ColumnBigint},
		{Name: "depth", Type: ColumnInt},
	}
	args := []NamedArg{
		{Name: "class_name", Type: ArgString, Required: !all},
		{Name: "index_name", Type: ArgString, Required: !all},
	}
	return Metadata{Type: t, DBAOnly: true, Columns: cols, Args: args}
}

func indexCapacityMeta(t ShowType, all bool) Metadata {
	cols := []Column{
		{Name: "class_name", Type: ColumnVarchar},
		{Name: "index_name", Type: ColumnVarchar},
		{Name: "num_leaf_pages", Type: ColumnBigint},
		{Name: "num_total_pages", Type: ColumnBigint},
		{Name: "avg_key_len", Type: ColumnFloat},
	}
	args := []NamedArg{
		{Name: "class_name", Type: ArgString, Required: !all},
		{Name: "index_name", Type: ArgString, Required: !all},
	}
	return Metadata{Type: t, DBAOnly: true, Columns: cols, Args: args}
}
