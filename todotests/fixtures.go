package todotests

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/todo-contract-tests/todo-api-contract-tests/servicedef"

	"github.com/brianvoe/gofakeit/v6"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
)

var emailUnsafeChars = regexp.MustCompile(`[^a-z0-9._-]+`)

// Fixtures generates random but valid request bodies. It is safe for concurrent use.
type Fixtures struct {
	faker       *gofakeit.Faker
	emailDomain string
	lock        sync.Mutex
}

// NewFixtures creates a generator. The same non-zero seed always produces the same
// sequence of names and texts; due dates still depend on the current time.
func NewFixtures(seed int64, emailDomain string) *Fixtures {
	return &Fixtures{
		faker:       gofakeit.New(seed),
		emailDomain: emailDomain,
	}
}

func (f *Fixtures) GenerateAssignee() servicedef.AssigneeParams {
	f.lock.Lock()
	defer f.lock.Unlock()
	prename := f.faker.FirstName()
	name := f.faker.LastName()
	return servicedef.AssigneeParams{
		Prename: prename,
		Name:    name,
		Email:   f.email(prename, name),
	}
}

func (f *Fixtures) email(prename, name string) string {
	local := emailUnsafeChars.ReplaceAllString(strings.ToLower(prename+"."+name), "")
	if strings.Trim(local, ".") == "" {
		local = "assignee"
	}
	return fmt.Sprintf("%s%d@%s", local, f.faker.Number(10, 99), f.emailDomain)
}

// GenerateTodo returns a todo with a random title and description. assigneeIDs may be nil,
// which is sent as an empty list. If dueDate is omitted it defaults to SoonTimestamp.
func (f *Fixtures) GenerateTodo(assigneeIDs []int64, dueDate ...ldvalue.Value) servicedef.TodoParams {
	if assigneeIDs == nil {
		assigneeIDs = []int64{}
	}
	due := ldvalue.Int(int(f.SoonTimestamp()))
	if len(dueDate) > 0 {
		due = dueDate[0]
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	return servicedef.TodoParams{
		Title:          "Create " + f.faker.ProductName(),
		Description:    f.faker.ProductDescription(),
		AssigneeIDList: assigneeIDs,
		DueDate:        due,
	}
}

func (f *Fixtures) GenerateTodoDescription() string {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.faker.ProductDescription()
}

// SoonTimestamp returns a millisecond timestamp between one minute and one day from now.
func (f *Fixtures) SoonTimestamp() int64 {
	now := time.Now()
	f.lock.Lock()
	soon := f.faker.DateRange(now.Add(time.Minute), now.Add(time.Hour*24))
	f.lock.Unlock()
	return servicedef.Timestamp(soon)
}
