package database

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Chaque statement du catalogue doit binder exactement une valeur par
// placeholder ; les INSERT suivent colonne à colonne la liste orderColumns
func TestOrderStatementsPlaceholdersMatchColumns(t *testing.T) {
	columns := len(strings.Split(orderColumns, ","))

	assert.Equal(t, 17, columns)
	assert.Equal(t, columns, strings.Count(cqlInsertOrder, "?"))
	assert.Equal(t, columns, strings.Count(cqlInsertIndex, "?"))
	assert.Equal(t, 1, strings.Count(cqlListOrders, "?"))
	assert.Equal(t, 1, strings.Count(cqlOrderByID, "?"))
	assert.Equal(t, 6, strings.Count(cqlUpdateStatus, "?"))
	assert.Equal(t, 4, strings.Count(cqlUpdateStatusIndex, "?"))
	assert.Equal(t, 1, strings.Count(cqlVIPCodes, "?"))
}
