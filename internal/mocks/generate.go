package mocks

//go:generate mockery --name RangeSyncer --srcpkg github.com/aevon-lab/cc-reporting/internal/aggregation --output ./aggregation --outpkg aggregationmocks --with-expecter
//go:generate mockery --name Completer --srcpkg github.com/aevon-lab/cc-reporting/internal/nlquery --output ./nlquery --outpkg nlquerymocks --with-expecter
