package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	Log          *logrus.Logger
	currentFile  *os.File
	logDirectory string
	sequence     int
	mu           sync.Mutex
)

func init() {
	// InitLogger前に呼ばれてもnilにならないよう標準出力へのロガーを用意
	Log = logrus.New()
	Log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
}

// InitLogger ロガーを初期化し、ファイル出力を設定
// directoryが空の場合は標準出力のみに出力する
func InitLogger(level, directory string) error {
	mu.Lock()
	defer mu.Unlock()

	Log = logrus.New()

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	Log.SetLevel(parsed)

	// JSON形式でログを出力
	Log.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
	})

	logDirectory = directory
	if logDirectory == "" {
		Log.SetOutput(os.Stdout)
		return nil
	}

	// ログディレクトリを作成
	if err := os.MkdirAll(logDirectory, 0755); err != nil {
		return fmt.Errorf("ログディレクトリの作成に失敗: %v", err)
	}

	if err := rotateLogFile(); err != nil {
		return fmt.Errorf("ログファイルの作成に失敗: %v", err)
	}

	Log.Info("ロガーが初期化されました")
	return nil
}

// Rotate 現在のログファイルを閉じて新しいファイルに切り替える
// S3アップロード前に呼ぶことで、書き込み中のファイルを対象外にできる
func Rotate() error {
	mu.Lock()
	defer mu.Unlock()

	if logDirectory == "" {
		return nil
	}
	return rotateLogFile()
}

// rotateLogFile 新しいログファイルを作成（呼び出し側でロックを保持すること）
func rotateLogFile() error {
	if currentFile != nil {
		currentFile.Close()
	}

	// 新しいファイル名を生成（タイムスタンプ + 連番）
	sequence++
	filename := fmt.Sprintf("app_%s_%03d.log", time.Now().Format("2006-01-02_15-04-05"), sequence)
	path := filepath.Join(logDirectory, filename)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	currentFile = file

	// 標準出力とファイルの両方に出力
	Log.SetOutput(io.MultiWriter(os.Stdout, currentFile))
	Log.WithField("file", path).Info("新しいログファイルを作成しました")
	return nil
}

// GetCurrentLogFile 現在のログファイルパスを取得
func GetCurrentLogFile() string {
	mu.Lock()
	defer mu.Unlock()

	if currentFile != nil {
		return currentFile.Name()
	}
	return ""
}

// CloseLogger ロガーを終了
func CloseLogger() {
	mu.Lock()
	defer mu.Unlock()

	if currentFile != nil {
		Log.Info("ログファイルを閉じます")
		Log.SetOutput(os.Stdout)
		currentFile.Close()
		currentFile = nil
	}
}

// WithFields フィールド付きログエントリを作成
func WithFields(fields logrus.Fields) *logrus.Entry {
	return Log.WithFields(fields)
}

// WithField フィールド付きログエントリを作成（単一フィールド）
func WithField(key string, value interface{}) *logrus.Entry {
	return Log.WithField(key, value)
}
