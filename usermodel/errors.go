package usermodel

import (
	"fmt"

	"github.com/calcmesh/calcmesh/model"
)

func notFound(format string, args ...any) *model.Error {
	return &model.Error{Code: model.NotFound, Message: fmt.Sprintf(format, args...)}
}

func invalidArgument(format string, args ...any) *model.Error {
	return &model.Error{Code: model.InvalidArgument, Message: fmt.Sprintf(format, args...)}
}
