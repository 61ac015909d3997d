package testutils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/crytic/solbuild/utils"
	"github.com/stretchr/testify/require"
)

// CopyToTestDirectory copies a file or directory at filePath, relative to the working directory of the test, into an
// ephemeral directory. Returns the absolute path of the copy.
func CopyToTestDirectory(t *testing.T, filePath string) string {
	sourcePath, err := filepath.Abs(filePath)
	require.NoError(t, err)

	sourcePathInfo, err := os.Stat(sourcePath)
	require.NoError(t, err, "test fixture %s must exist", filePath)

	targetPath := filepath.Join(t.TempDir(), "solbuildTest", sourcePathInfo.Name())
	if sourcePathInfo.IsDir() {
		err = utils.CopyDirectory(sourcePath, targetPath, true)
	} else {
		err = utils.CopyFile(sourcePath, targetPath)
	}
	require.NoError(t, err)
	return targetPath
}

// WriteProjectFiles writes the provided files, keyed by slash-separated path, below root. Parent directories are
// created as needed.
func WriteProjectFiles(t *testing.T, root string, files map[string]string) {
	for path, content := range files {
		fullPath := filepath.Join(root, filepath.FromSlash(path))
		require.NoError(t, utils.MakeDirectory(filepath.Dir(fullPath)))
		require.NoError(t, os.WriteFile(fullPath, []byte(content), 0644))
	}
}

// ExecuteInDirectory runs method with the working directory set to testPath, or to its parent directory if testPath
// is a file. The previous working directory is restored afterwards, even if method fails the test, so the temporary
// directory can be cleaned up and files generated by the test do not end up in the codebase directories.
func ExecuteInDirectory(t *testing.T, testPath string, method func()) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	testDirectory := testPath
	if !utils.IsDirectory(testPath) {
		testDirectory = filepath.Dir(testPath)
	}

	require.NoError(t, os.Chdir(testDirectory))
	defer func() {
		require.NoError(t, os.Chdir(cwd))
	}()

	method()
}
