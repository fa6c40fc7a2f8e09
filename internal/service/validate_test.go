package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"todopro/internal/service"
)

func TestValidateUsername(t *testing.T) {
	assert.Error(t, service.ValidateUsername(""))
	assert.Error(t, service.ValidateUsername("ab"))
	assert.NoError(t, service.ValidateUsername("ada"))
}

func TestValidatePassword(t *testing.T) {
	assert.Error(t, service.ValidatePassword(""))
	assert.Error(t, service.ValidatePassword("12345"))
	assert.NoError(t, service.ValidatePassword("123456"))
}

func TestValidateEmail(t *testing.T) {
	assert.Error(t, service.ValidateEmail(""))
	assert.Error(t, service.ValidateEmail("not-an-email"))
	assert.Error(t, service.ValidateEmail("Ada <ada@example.com>"))
	assert.NoError(t, service.ValidateEmail("ada@example.com"))
}

func TestValidateCode(t *testing.T) {
	assert.Error(t, service.ValidateCode(""))
	assert.Error(t, service.ValidateCode("12345"))
	assert.Error(t, service.ValidateCode("12a456"))
	assert.Error(t, service.ValidateCode("1234567"))
	assert.NoError(t, service.ValidateCode("123456"))
}
