package verification

import (
	"fmt"

	"github.com/veristry/veristry/lib/common"
	"github.com/veristry/veristry/lib/errors"
	"github.com/veristry/veristry/lib/storage"
)

// Project is the submitted work item under review. Only the fields the
// engine needs are stored; document storage is an external
// collaborator.
//
// models
//   - 'id'
//     'pj-id-<Project.ID>': `Project`
const ProjectPrefixID string = "pj-id-"

type Project struct {
	ID          string `json:"id"`
	SubmitterID string `json:"submitter_id"`
	Title       string `json:"title"`
	SubmittedAt string `json:"submitted_at"`
}

func NewProject(submitterID, title string) *Project {
	return &Project{
		ID:          common.GenerateUUID(),
		SubmitterID: submitterID,
		Title:       title,
		SubmittedAt: common.NowISO8601(),
	}
}

func (p *Project) String() string {
	return string(common.MustJSONMarshal(p))
}

func GetProjectKey(id string) string {
	return fmt.Sprintf("%s%s", ProjectPrefixID, id)
}

func (p *Project) Save(st *storage.LevelDBBackend) error {
	return st.New(GetProjectKey(p.ID), p)
}

func ExistsProject(st *storage.LevelDBBackend, id string) (bool, error) {
	return st.Has(GetProjectKey(id))
}

func GetProject(st *storage.LevelDBBackend, id string) (p *Project, err error) {
	if err = st.Get(GetProjectKey(id), &p); err != nil {
		if err == errors.StorageRecordDoesNotExist {
			err = errors.ProjectDoesNotExist
		}
		return
	}

	return
}
