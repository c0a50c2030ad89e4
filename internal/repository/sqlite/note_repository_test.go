package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/cftracker/internal/models"
	"github.com/vytor/cftracker/internal/repository"
	"github.com/vytor/cftracker/internal/repository/sqlite"
	"github.com/vytor/cftracker/internal/testutil"
)

type NoteRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.NoteRepository
}

func (s *NoteRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewNoteRepository(s.db)
}

func (s *NoteRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *NoteRepositorySuite) TestLoadNotes_Empty() {
	notes, err := s.repo.LoadNotes(context.Background())
	s.Require().NoError(err)
	s.Assert().NotNil(notes)
	s.Assert().Empty(notes)
}

func (s *NoteRepositorySuite) TestSaveAndLoad() {
	ctx := context.Background()
	a := models.ProblemKey{ContestID: 1500, Index: "C"}
	b := models.ProblemKey{ContestID: 1500, Index: "c"}

	s.Require().NoError(s.repo.SaveNote(ctx, a, "off by one in the prefix sums"))
	s.Require().NoError(s.repo.SaveNote(ctx, b, "different problem"))

	notes, err := s.repo.LoadNotes(ctx)
	s.Require().NoError(err)
	s.Assert().Len(notes, 2, "index is case-sensitive")
	s.Assert().Equal("off by one in the prefix sums", notes[a])
	s.Assert().Equal("different problem", notes[b])
}

func (s *NoteRepositorySuite) TestSaveNote_Replaces() {
	ctx := context.Background()
	key := models.ProblemKey{ContestID: 4, Index: "A"}

	s.Require().NoError(s.repo.SaveNote(ctx, key, "first"))
	s.Require().NoError(s.repo.SaveNote(ctx, key, ""))

	notes, err := s.repo.LoadNotes(ctx)
	s.Require().NoError(err)
	s.Require().Contains(notes, key)
	s.Assert().Equal("", notes[key])
}

func TestNoteRepositorySuite(t *testing.T) {
	suite.Run(t, new(NoteRepositorySuite))
}
