package logic

import (
	"context"

	"github.com/antonio-alexander/go-employee-query/internal/data"
)

// batchSize bounds the number of identifiers in a single fetch query
const batchSize int = 10000

var orderByEmpNo = data.EmployeeOrder{
	SortBy:    data.SortByEmpNo,
	SortOrder: data.SortOrderAsc,
}

// Batches partitions empNos into consecutive slices of at most size
func Batches(empNos []int64, size int) [][]int64 {
	var batches [][]int64

	for start := 0; start < len(empNos); start += size {
		batches = append(batches, empNos[start:min(start+size, len(empNos))])
	}
	return batches
}

// fetchBatches fetches the records for empNos (in the same order) along
// with any other criteria, one query per batch
func (l *logic) fetchBatches(ctx context.Context, criteria data.EmployeeCriteria, empNos []int64) ([]*data.EmployeeRecord, error) {
	batches := Batches(empNos, batchSize)
	records := make([]*data.EmployeeRecord, 0, len(empNos))
	for _, batch := range batches {
		criteria.EmpNos = batch
		batchRecords, err := l.sql.EmployeesFetch(ctx, criteria, orderByEmpNo, 0, 0)
		if err != nil {
			return nil, err
		}
		records = append(records, batchRecords...)
	}
	if l.metrics != nil {
		l.metrics.ObserveBatches(len(batches))
	}
	l.trace(ctx, "fetched %d records in %d batches", len(records), len(batches))
	return records, nil
}

// materialize fetches the complete (unpaginated) filtered set ordered
// by employee number
func (l *logic) materialize(ctx context.Context, filters Filters, constraint Constraint) ([]*data.EmployeeRecord, error) {
	switch constraint.Kind {
	case InlineIds, DeferredIds:
		return l.fetchBatches(ctx, filters.Criteria(), constraint.EmpNos)
	}
	return l.sql.EmployeesFetch(ctx, filters.Criteria(), orderByEmpNo, 0, 0)
}
