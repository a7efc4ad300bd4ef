package view

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/BuzzLyutic/taskcentral/internal/client"
	"github.com/BuzzLyutic/taskcentral/internal/model"
)

func TestTaskList_Share(t *testing.T) {
	list, api, clock := setupList(t, nil)
	deadline := model.NewDate(2030, 1, 15)
	loadTasks(t, list, api, []model.Task{{
		ID: 4, UserID: 1, Title: "Report", Deadline: &deadline,
		Category: model.CategoryWork, Priority: model.PriorityMedium, Notes: "q3", AttachmentPath: "report.pdf",
	}})

	api.On("GetUser", mock.Anything, int64(2)).Return(model.User{ID: 2, Name: "Ana", Email: "user2@example.com"}, nil).Once()
	api.On("ShareTask", mock.Anything, mock.MatchedBy(func(s model.SharedTask) bool {
		return s.TaskID == 4 && s.UserID == 1 && s.SharedWithID == 2 &&
			s.Category == model.CategoryWork && s.Priority == model.PriorityMedium &&
			s.Notes == "q3" && s.Attachments == "report.pdf" &&
			s.Deadline != nil && s.Deadline.String() == "2030-01-15"
	})).Return(model.SharedTask{ID: 9}, nil).Once()

	list.Share(context.Background(), 4, 2)

	state := list.State()
	assert.True(t, state.Success)
	assert.Equal(t, "Tarea compartida con Ana.", state.Message)
	assert.Equal(t, DialogNone, state.Dialog)
	api.AssertExpectations(t)

	clock.fire(SuccessDuration)
	assert.False(t, list.State().Success)
}

func TestTaskList_ShareUnknownRecipient(t *testing.T) {
	list, api, _ := setupList(t, nil)
	loadTasks(t, list, api, []model.Task{{ID: 4, Title: "Report"}})

	notFound := fmt.Errorf("get user 77: %w", &client.StatusError{Code: 404})
	api.On("GetUser", mock.Anything, int64(77)).Return(model.User{}, notFound).Once()

	list.Share(context.Background(), 4, 77)

	state := list.State()
	assert.Equal(t, DialogUnknownUser, state.Dialog)
	assert.Equal(t, UnknownUserMessage, state.DialogMessage)
	api.AssertNotCalled(t, "ShareTask", mock.Anything, mock.Anything)

	// нулевой id даже не уходит на сервер
	list.DismissDialog()
	list.Share(context.Background(), 4, 0)
	assert.Equal(t, DialogUnknownUser, list.State().Dialog)
	api.AssertNumberOfCalls(t, "GetUser", 1)
}

func TestTaskList_ShareErrorsAreSwallowed(t *testing.T) {
	list, api, _ := setupList(t, nil)
	loadTasks(t, list, api, []model.Task{{ID: 4, Title: "Report"}})

	api.On("GetUser", mock.Anything, int64(2)).Return(model.User{ID: 2, Email: "user2@example.com"}, nil)
	api.On("ShareTask", mock.Anything, mock.Anything).Return(model.SharedTask{}, errors.New("500")).Once()
	list.Share(context.Background(), 4, 2)

	state := list.State()
	assert.False(t, state.Success)
	assert.Equal(t, DialogNone, state.Dialog)

	// чужая задача и сам владелец игнорируются
	list.Share(context.Background(), 99, 2)
	list.Share(context.Background(), 4, 1)
	api.AssertNumberOfCalls(t, "GetUser", 1)
}
